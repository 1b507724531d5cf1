package security

// In-memory client registry for token issuance (replace with DB/config
// later).
type Client struct {
	ID      string
	Secret  string
	Perms   []string
	Enabled bool
}

var Clients = map[string]Client{
	"storefront-web": {
		ID: "storefront-web", Secret: "storefront-secret", Enabled: true,
		Perms: []string{"products.read", "carts.read", "carts.write", "sales.read", "sales.write"},
	},
	"svc-backoffice": {
		ID: "svc-backoffice", Secret: "backoffice-secret", Enabled: true,
		Perms: []string{"products.read", "sales.read", "sales.write"},
	},
	"svc-analytics": {
		ID: "svc-analytics", Secret: "analytics-secret", Enabled: true,
		Perms: []string{"products.read", "sales.read"},
	},
}
