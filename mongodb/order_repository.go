package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gametopup/storefront/domain"
)

// OrderRepository implements domain.OrderRepository on MongoDB.
type OrderRepository struct {
	orders *mongo.Collection
}

// NewOrderRepository creates an OrderRepository and ensures its indexes.
func NewOrderRepository(ctx context.Context, db *mongo.Database) (domain.OrderRepository, error) {
	repo := &OrderRepository{orders: db.Collection(OrdersCollection)}

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "invoice_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := repo.orders.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("failed to create order indexes")
	}
	return repo, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = NewObjectID()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}

	if _, err := r.orders.InsertOne(ctx, o); err != nil {
		log.Error().Err(err).Str("userID", o.UserID).Msg("error creating order")
		return err
	}
	return nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *OrderRepository) GetOrderByInvoiceID(ctx context.Context, invoiceID string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"invoice_id": invoiceID})
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var o domain.Order
	err := r.orders.FindOne(ctx, filter).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	result, err := r.orders.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) SetOrderInvoice(ctx context.Context, id, invoiceID, invoiceURL string) error {
	update := bson.M{"$set": bson.M{
		"invoice_id":  invoiceID,
		"invoice_url": invoiceURL,
		"updated_at":  time.Now().UTC(),
	}}
	result, err := r.orders.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
