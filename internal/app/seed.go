package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log"

	"github.com/shopspring/decimal"

	"etalase/internal/services"
)

type demoItem struct {
	input  services.ItemInput
	swatch color.RGBA
}

func variant(size string, price int64, body, pant string) services.VariantInput {
	return services.VariantInput{Range: size, Price: decimal.NewFromInt(price), BodyLong: body, PantLong: pant}
}

var demoItems = []demoItem{
	{
		input: services.ItemInput{
			Code: "A1", Name: "Linen Summer Shirt", Category: "Summer", Note: "Hand stitched linen",
			Variants: []services.VariantInput{variant("S-M", 650, "70", ""), variant("L-XL", 500, "74", "")},
		},
		swatch: color.RGBA{R: 0xf4, G: 0xe1, B: 0xb5, A: 0xff},
	},
	{
		input: services.ItemInput{
			Code: "B2", Name: "Wool Winter Jacket", Category: "Winter", Note: "Lined with fleece",
			Variants: []services.VariantInput{variant("M", 800, "72", "")},
		},
		swatch: color.RGBA{R: 0x3b, G: 0x4a, B: 0x6b, A: 0xff},
	},
	{
		input: services.ItemInput{
			Code: "C3", Name: "Cotton Pajama Set", Category: "Sleepwear",
			Variants: []services.VariantInput{variant("S", 300, "66", "90"), variant("M", 320, "68", "94"), variant("L", 340, "70", "98")},
		},
		swatch: color.RGBA{R: 0xb7, G: 0xd3, B: 0xc4, A: 0xff},
	},
}

// seedItems populates an empty inventory with a few demo listings.
func seedItems(ctx context.Context, inventory *services.InventoryService) {
	existing, err := inventory.ListItems(ctx, "")
	if err != nil {
		log.Printf("Error checking inventory before seeding: %v", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	for _, d := range demoItems {
		data, err := swatchPNG(d.swatch)
		if err != nil {
			log.Printf("Error rendering image for %s: %v", d.input.Code, err)
			continue
		}
		item, err := inventory.CreateItem(ctx, d.input, services.ImageUpload{Filename: d.input.Code + ".png", Data: data})
		if err != nil {
			log.Printf("Error seeding item %s: %v", d.input.Code, err)
			continue
		}
		log.Printf("Seeded item: %s (ID: %d)", item.Name, item.ID)
	}
}

// swatchPNG renders a small solid-colour placeholder image.
func swatchPNG(c color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
