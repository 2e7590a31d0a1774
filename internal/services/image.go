package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"

	_ "image/png"

	"golang.org/x/image/draw"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
)

const (
	maxPlaceImageSide = 1280
	placeImageQuality = 85
)

// decodeUploadedImage accepts PNG and JPEG payloads only.
func decodeUploadedImage(raw []byte) (image.Image, error) {
	const op = "image.Decode"
	if len(raw) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "Image is required.", nil)
	}
	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg":
	default:
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "Invalid mime type!", nil)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "Invalid image data.", err)
	}
	return img, nil
}

// NormalizePlaceImage bounds the longest side and re-encodes as JPEG.
func NormalizePlaceImage(raw []byte) ([]byte, error) {
	img, err := decodeUploadedImage(raw)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxPlaceImageSide || h > maxPlaceImageSide {
		if w >= h {
			h = h * maxPlaceImageSide / w
			w = maxPlaceImageSide
		} else {
			w = w * maxPlaceImageSide / h
			h = maxPlaceImageSide
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}

	// JPEG has no alpha; flatten onto white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: placeImageQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}
