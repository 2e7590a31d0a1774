package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
	types "github.com/yungbote/placeshare-backend/internal/domain"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/geocode"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

const minDescriptionLength = 5

type CreatePlaceInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	Address     string
	Image       []byte
	ImageName   string
}

type UpdatePlaceInput struct {
	CallerID    uuid.UUID
	PlaceID     uuid.UUID
	Title       string
	Description string
}

type DeletePlaceInput struct {
	CallerID uuid.UUID
	PlaceID  uuid.UUID
}

// PlaceService owns the place lifecycle. Every mutation that touches both a
// place and its owner's place-set runs in one EntityStore transaction.
type PlaceService interface {
	CreatePlace(ctx context.Context, in CreatePlaceInput) (*types.Place, error)
	UpdatePlace(ctx context.Context, in UpdatePlaceInput) (*types.Place, error)
	DeletePlace(ctx context.Context, in DeletePlaceInput) error
	GetPlace(ctx context.Context, placeID uuid.UUID) (*types.Place, error)
	ListPlacesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Place, error)
}

type PlaceServiceDeps struct {
	Store    domainagg.EntityStore
	Hooks    aggregates.Hooks
	Gate     AuthorizationGate
	Assets   AssetService
	Janitor  AssetJanitor
	Geocoder geocode.Geocoder
}

type placeService struct {
	log      *logger.Logger
	store    domainagg.EntityStore
	hooks    aggregates.Hooks
	gate     AuthorizationGate
	assets   AssetService
	janitor  AssetJanitor
	geocoder geocode.Geocoder
	tracer   trace.Tracer
}

func NewPlaceService(log *logger.Logger, deps PlaceServiceDeps) PlaceService {
	gate := deps.Gate
	if gate == nil {
		gate = NewAuthorizationGate()
	}
	return &placeService{
		log:      log.With("service", "PlaceService"),
		store:    deps.Store,
		hooks:    deps.Hooks,
		gate:     gate,
		assets:   deps.Assets,
		janitor:  deps.Janitor,
		geocoder: deps.Geocoder,
		tracer:   observability.Tracer(),
	}
}

func (ps *placeService) execDeps() aggregates.BaseDeps {
	return aggregates.BaseDeps{Store: ps.store, Hooks: ps.hooks}
}

func (ps *placeService) GetPlace(ctx context.Context, placeID uuid.UUID) (*types.Place, error) {
	const op = "PlaceService.GetPlace"
	ctx, span := ps.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("place.id", placeID.String())))
	defer span.End()

	place, err := ps.findPlace(ctx, op, placeID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	ps.resolveImage(place)
	return place, nil
}

func (ps *placeService) ListPlacesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Place, error) {
	const op = "PlaceService.ListPlacesByOwner"
	ctx, span := ps.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("owner.id", ownerID.String())))
	defer span.End()

	places, err := ps.store.FindPlacesByOwner(ctx, ownerID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if len(places) == 0 {
		err := domainagg.NewError(domainagg.CodeNotFound, op, "Could not find places for the provided user id.", nil)
		recordSpanError(span, err)
		return nil, err
	}
	for _, p := range places {
		ps.resolveImage(p)
	}
	span.SetAttributes(attribute.Int("place.count", len(places)))
	return places, nil
}

func (ps *placeService) CreatePlace(ctx context.Context, in CreatePlaceInput) (*types.Place, error) {
	const op = "PlaceService.CreatePlace"
	ctx, span := ps.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("owner.id", in.OwnerID.String())))
	defer span.End()

	place, err := ps.createPlace(ctx, op, in)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("place.id", place.ID.String()))
	return place, nil
}

func (ps *placeService) createPlace(ctx context.Context, op string, in CreatePlaceInput) (*types.Place, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	address := strings.TrimSpace(in.Address)
	if title == "" || address == "" || utf8.RuneCountInString(description) < minDescriptionLength {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "Invalid inputs passed, please check your data.", nil)
	}
	if len(in.Image) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "Image is required.", nil)
	}
	if in.OwnerID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "Authentication failed!", nil)
	}

	if _, err := ps.store.FindUserByID(ctx, in.OwnerID); err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			return nil, domainagg.NewError(domainagg.CodeNotFound, op, "Could not find user for provided id.", err)
		}
		return nil, err
	}

	coords, err := ps.resolveAddress(ctx, op, address)
	if err != nil {
		return nil, err
	}

	normalized, err := NormalizePlaceImage(in.Image)
	if err != nil {
		return nil, err
	}

	// Every check has passed; only now does the asset become a side effect
	// that needs cleaning up on failure.
	key, err := ps.assets.Store(ctx, objectstorage.BucketCategoryPlace, normalized, in.ImageName)
	if err != nil {
		return nil, err
	}

	place := &types.Place{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Address:     address,
		Location:    types.Location{Lat: coords.Lat, Lng: coords.Lng},
		ImageKey:    key,
		OwnerID:     in.OwnerID,
	}
	err = aggregates.Execute(ctx, ps.execDeps(), op, func(tx domainagg.Tx) error {
		placeID, err := tx.InsertPlace(place)
		if err != nil {
			return err
		}
		return tx.AppendPlaceToUser(place.OwnerID, placeID)
	})
	if err != nil {
		committed, known := lookupCommitted(ctx, err, func(ctx context.Context) error {
			_, ferr := ps.store.FindPlaceByID(ctx, place.ID)
			return ferr
		})
		switch {
		case committed:
			ps.log.Warn("place create reported failure after commit", "place_id", place.ID, "error", err)
		case !known:
			ps.log.Error("place create outcome unknown, image kept", "place_id", place.ID, "key", key, "error", err)
			return nil, err
		default:
			ps.log.Warn("place create aborted", "owner_id", in.OwnerID, "error", err)
			ps.janitor.Schedule(ctx, objectstorage.BucketCategoryPlace, key, types.AssetCleanupReasonCreateAborted, map[string]any{
				"place_id": place.ID.String(),
				"owner_id": in.OwnerID.String(),
			})
			return nil, err
		}
	}

	ps.resolveImage(place)
	ps.log.Info("Place created", "place_id", place.ID, "owner_id", place.OwnerID)
	return place, nil
}

func (ps *placeService) UpdatePlace(ctx context.Context, in UpdatePlaceInput) (*types.Place, error) {
	const op = "PlaceService.UpdatePlace"
	ctx, span := ps.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("place.id", in.PlaceID.String())))
	defer span.End()

	current, err := ps.findPlace(ctx, op, in.PlaceID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if err := ps.gate.AuthorizeMutation(ctx, in.CallerID, current); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || utf8.RuneCountInString(description) < minDescriptionLength {
		err := domainagg.NewError(domainagg.CodeValidation, op, "Invalid inputs passed, please check your data.", nil)
		recordSpanError(span, err)
		return nil, err
	}

	var updated *types.Place
	err = aggregates.Execute(ctx, ps.execDeps(), op, func(tx domainagg.Tx) error {
		p, err := tx.UpdatePlace(in.PlaceID, types.PlacePatch{Title: &title, Description: &description})
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	ps.resolveImage(updated)
	return updated, nil
}

func (ps *placeService) DeletePlace(ctx context.Context, in DeletePlaceInput) error {
	const op = "PlaceService.DeletePlace"
	ctx, span := ps.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("place.id", in.PlaceID.String())))
	defer span.End()

	place, err := ps.findPlace(ctx, op, in.PlaceID)
	if err != nil {
		recordSpanError(span, err)
		return err
	}
	if err := ps.gate.AuthorizeMutation(ctx, in.CallerID, place); err != nil {
		recordSpanError(span, err)
		return err
	}

	var cleanup *types.AssetCleanup
	if strings.TrimSpace(place.ImageKey) != "" {
		cleanup = NewCleanupTask(objectstorage.BucketCategoryPlace, place.ImageKey, types.AssetCleanupReasonPlaceDeleted, map[string]any{
			"place_id": place.ID.String(),
			"owner_id": place.OwnerID.String(),
		})
	}
	err = aggregates.Execute(ctx, ps.execDeps(), op, func(tx domainagg.Tx) error {
		if err := tx.RemovePlace(place.ID); err != nil {
			return err
		}
		if err := tx.RemovePlaceFromUser(place.OwnerID, place.ID); err != nil {
			return err
		}
		if cleanup != nil {
			return tx.EnqueueAssetCleanup(cleanup)
		}
		return nil
	})
	if err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			err = domainagg.NewError(domainagg.CodeNotFound, op, "Could not find place for this id.", err)
		}
		recordSpanError(span, err)
		return err
	}

	// The delete has committed. Asset removal is best effort and a pending
	// cleanup row remains for the janitor if this attempt fails.
	if cleanup != nil && !ps.janitor.Attempt(context.WithoutCancel(ctx), cleanup) {
		ps.log.Warn("place image delete failed (ignored)", "place_id", place.ID, "cleanup_id", cleanup.ID)
	}
	ps.log.Info("Place deleted", "place_id", place.ID, "owner_id", place.OwnerID)
	return nil
}

func (ps *placeService) findPlace(ctx context.Context, op string, placeID uuid.UUID) (*types.Place, error) {
	place, err := ps.store.FindPlaceByID(ctx, placeID)
	if err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			return nil, domainagg.NewError(domainagg.CodeNotFound, op, "Could not find a place for the provided id.", err)
		}
		return nil, err
	}
	return place, nil
}

func (ps *placeService) resolveAddress(ctx context.Context, op, address string) (geocode.Coordinates, error) {
	if ps.geocoder == nil {
		return geocode.Coordinates{}, domainagg.NewError(domainagg.CodeUpstream, op, "geocoder not configured", nil)
	}
	coords, err := ps.geocoder.ResolveAddress(ctx, address)
	switch {
	case err == nil:
		return coords, nil
	case errors.Is(err, geocode.ErrNoResults):
		return geocode.Coordinates{}, domainagg.NewError(domainagg.CodeValidation, op, "Could not find location for the specified address.", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return geocode.Coordinates{}, aggregates.MapError(op, err)
	default:
		return geocode.Coordinates{}, domainagg.NewError(domainagg.CodeUpstream, op, "Could not resolve the address, please try again later.", err)
	}
}

func (ps *placeService) resolveImage(place *types.Place) {
	if place == nil {
		return
	}
	place.ImageURL = ps.assets.PublicURL(objectstorage.BucketCategoryPlace, place.ImageKey)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(domainagg.CodeOf(err)))
}
