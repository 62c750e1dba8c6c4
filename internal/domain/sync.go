package domain

// SyncOptions selects which parts of a brand sync run
type SyncOptions struct {
	Products bool `json:"products"`
	Socials  bool `json:"socials"`
}

// SyncOptionsFromFlags applies the "neither means both" rule used by every trigger
func SyncOptionsFromFlags(products, socials bool) SyncOptions {
	if !products && !socials {
		return SyncOptions{Products: true, Socials: true}
	}
	return SyncOptions{Products: products, Socials: socials}
}

// UpsertResult is what the store reports for an upsert-by-natural-key
type UpsertResult struct {
	ID      string
	Created bool
}

// SyncResult aggregates the change counts of one brand's catalog sync
type SyncResult struct {
	BrandID            string `json:"brandId"`
	BrandName          string `json:"brandName"`
	CollectionsAdded   int    `json:"collectionsAdded"`
	CollectionsUpdated int    `json:"collectionsUpdated"`
	ProductsAdded      int    `json:"productsAdded"`
	ProductsUpdated    int    `json:"productsUpdated"`
	TotalCollections   int    `json:"totalCollections"`
	TotalProducts      int    `json:"totalProducts"`
}

// SocialResult summarizes one brand's social sync
type SocialResult struct {
	Skipped bool `json:"skipped"`
	Fetched int  `json:"fetched"`
	Added   int  `json:"added"`
	Updated int  `json:"updated"`
}

// BrandOutcome is one entry of a sweep: either a result or an error for the brand
type BrandOutcome struct {
	BrandID   string        `json:"brandId"`
	BrandName string        `json:"brandName"`
	Result    *SyncResult   `json:"result,omitempty"`
	Social    *SocialResult `json:"social,omitempty"`
	Error     string        `json:"error,omitempty"`
	Err       error         `json:"-"`
}

// Failed reports whether the brand's sync failed
func (o BrandOutcome) Failed() bool {
	return o.Err != nil
}
