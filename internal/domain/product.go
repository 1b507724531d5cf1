package domain

// Product is the catalog view the sales side needs: enough to snapshot
// name and price onto cart and sale lines at add/creation time.
type Product struct {
	ID    string
	Title string
	Price Money
}
