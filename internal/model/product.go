package model

// Product is the metadata returned by a barcode lookup. ID is only set when the
// product is known to the price store.
type Product struct {
	ID          string `json:"id,omitempty"`
	Barcode     string `json:"-"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// StoredProduct is a row of the products table, as needed by the refresh job.
type StoredProduct struct {
	ID      string
	Barcode string
	Name    string
}

type VerdictKind string

const (
	GoodDeal VerdictKind = "GOOD_DEAL"
	BadDeal  VerdictKind = "BAD_DEAL"
	Fair     VerdictKind = "FAIR"
	Wait     VerdictKind = "WAIT"
	Unknown  VerdictKind = "UNKNOWN"
)

type Verdict struct {
	Verdict VerdictKind `json:"verdict"`
	Message string      `json:"message"`
}
