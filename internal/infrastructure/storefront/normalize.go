package storefront

import (
	"fmt"
	"strings"
	"time"

	"storefront-ingest/internal/domain"

	"github.com/shopspring/decimal"
)

// NormalizeCollection maps a raw collection into the canonical fields.
// Malformed input yields empty fields, never an error.
func NormalizeCollection(raw RawCollection) domain.CollectionFields {
	fields := domain.CollectionFields{
		SourceID:   string(raw.ID),
		Title:      string(raw.Title),
		Handle:     string(raw.Handle),
		LaunchedAt: parseTimestamp(firstNonEmpty(raw.PublishedAt, raw.UpdatedAt)),
		Images:     []string{},
	}

	if raw.Handle != "" {
		url := "/collections/" + string(raw.Handle)
		fields.URL = &url
	}
	if description := firstNonEmpty(raw.BodyHTML, raw.Description); description != "" {
		fields.Description = &description
	}
	if raw.Image.Src != "" {
		fields.Images = []string{string(raw.Image.Src)}
	}

	return fields
}

// NormalizeItem maps a raw product into the canonical fields.
// Only the first variant is priced.
func NormalizeItem(raw RawProduct) domain.ItemFields {
	fields := domain.ItemFields{
		SourceID: string(raw.ID),
		Title:    string(raw.Title),
		Images:   []string{},
		Tags:     NormalizeTags(raw.Tags),
	}

	if raw.Handle != "" {
		handle := string(raw.Handle)
		fields.Handle = &handle
	}
	if raw.ProductType != "" {
		productType := string(raw.ProductType)
		fields.ProductType = &productType
	}
	if len(raw.Variants) > 0 {
		first := raw.Variants[0]
		fields.Price = parsePrice(first.Price)
		if first.Currency != "" {
			currency := string(first.Currency)
			fields.Currency = &currency
		}
	}
	for _, img := range raw.Images {
		if img.Src != "" {
			fields.Images = append(fields.Images, string(img.Src))
		}
	}

	return fields
}

// NormalizeTags resolves either tag shape into trimmed, non-empty, deduplicated strings
func NormalizeTags(tags Tags) []string {
	var candidates []string
	switch {
	case tags.text != nil:
		candidates = strings.Split(*tags.text, ",")
	case tags.list != nil:
		for _, v := range tags.list {
			if v == nil {
				continue
			}
			candidates = append(candidates, fmt.Sprint(v))
		}
	}

	out := []string{}
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func parsePrice(raw []byte) *decimal.Decimal {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &price
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05-0700", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func firstNonEmpty(values ...Text) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}
