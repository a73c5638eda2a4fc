package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/session"
)

func init() {
	registerSeeder(&SampleSeeder{})
}

type sample struct {
	name  string
	pages []color.Color
}

var samples = []sample{
	{"Sample Letter", []color.Color{color.White}},
	{"Sample Report", []color.Color{color.White, color.Gray{Y: 0xee}, color.White}},
	{"Sample Receipts", []color.Color{
		color.RGBA{R: 0xff, G: 0xf8, B: 0xe1, A: 0xff},
		color.RGBA{R: 0xe3, G: 0xf2, B: 0xfd, A: 0xff},
	}},
}

// SampleSeeder creates a few letter-sized documents with plain colored pages.
type SampleSeeder struct{}

func (s *SampleSeeder) Name() string {
	return "samples"
}

func (s *SampleSeeder) Description() string {
	return "Creates sample documents with plain colored pages"
}

func (s *SampleSeeder) Seed(ctx context.Context, env *Env) (int, error) {
	pageSize := codec.DefaultPageSize

	for _, smp := range samples {
		draft := session.NewDraft(env.Codec, &pageSize, env.Logger)
		draft.SetName(smp.name)

		for _, fill := range smp.pages {
			if _, err := draft.Append(page(pageSize, fill)); err != nil {
				return 0, fmt.Errorf("%s: %w", smp.name, err)
			}
		}

		doc, err := draft.Document()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", smp.name, err)
		}
		doc.Timestamp = env.Now()

		if err := env.Store.Create(ctx, doc); err != nil {
			return 0, fmt.Errorf("%s: %w", smp.name, err)
		}
		env.Logger.Info("sample seeded", "id", doc.ID, "name", doc.Name, "pages", len(smp.pages))
	}

	return len(samples), nil
}

func page(size codec.Size, fill color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, int(size.Width), int(size.Height)))
	draw.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	return img
}
