package mongodb

// Collection names.
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	OrdersCollection   = "orders"
)
