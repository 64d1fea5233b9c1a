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

// ProductRepository implements domain.ProductRepository on MongoDB.
type ProductRepository struct {
	products *mongo.Collection
}

// NewProductRepository creates a ProductRepository.
func NewProductRepository(db *mongo.Database) domain.ProductRepository {
	return &ProductRepository{products: db.Collection(ProductsCollection)}
}

func (r *ProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = NewObjectID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.products.InsertOne(ctx, p); err != nil {
		log.Error().Err(err).Str("name", p.Name).Msg("error creating product")
		return err
	}
	return nil
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) ListActiveProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, bson.M{"active": true})
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, bson.M{})
}

func (r *ProductRepository) list(ctx context.Context, filter bson.M) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "game", Value: 1}, {Key: "price", Value: 1}})
	cursor, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":         p.Name,
		"game":         p.Game,
		"denomination": p.Denomination,
		"price":        p.Price,
		"active":       p.Active,
		"updated_at":   p.UpdatedAt,
	}}
	result, err := r.products.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
