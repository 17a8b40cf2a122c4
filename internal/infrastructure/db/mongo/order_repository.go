package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

const collectionOrders = "orders"

// OrderRepository stores orders append-only; there is no update path.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

type mongoOrderLine struct {
	ProductID string               `bson:"product_id"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
}

type mongoOrder struct {
	ID        string               `bson:"_id"`
	UserID    string               `bson:"user_id"`
	Items     []mongoOrderLine     `bson:"items"`
	Total     primitive.Decimal128 `bson:"total"`
	CreatedAt time.Time            `bson:"created_at"`
}

func toMongoOrder(o *domain.Order) (mongoOrder, error) {
	total, err := toDecimal128(o.Total)
	if err != nil {
		return mongoOrder{}, err
	}
	doc := mongoOrder{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     make([]mongoOrderLine, 0, len(o.Items)),
		Total:     total,
		CreatedAt: o.CreatedAt.UTC(),
	}
	for _, l := range o.Items {
		price, err := toDecimal128(l.Price)
		if err != nil {
			return mongoOrder{}, err
		}
		doc.Items = append(doc.Items, mongoOrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     price,
			Quantity:  l.Quantity,
		})
	}
	return doc, nil
}

func (m mongoOrder) toDomain() (*domain.Order, error) {
	total, err := fromDecimal128(m.Total)
	if err != nil {
		return nil, err
	}
	o := &domain.Order{
		ID:        m.ID,
		UserID:    m.UserID,
		Items:     make([]domain.OrderLine, 0, len(m.Items)),
		Total:     total,
		CreatedAt: m.CreatedAt.UTC(),
	}
	for _, l := range m.Items {
		price, err := fromDecimal128(l.Price)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, domain.OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     price,
			Quantity:  l.Quantity,
		})
	}
	return o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoOrder(o)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoOrder
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain()
}

// List returns a page of orders, newest first, and the total match count.
func (r *OrderRepository) List(ctx context.Context, f ports.OrderFilter) ([]*domain.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if f.UserID != "" {
		query["user_id"] = f.UserID
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		skip := int64(0)
		if f.Page > 1 {
			skip = int64((f.Page - 1) * f.Limit)
		}
		opts.SetSkip(skip).SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	var docs []mongoOrder
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}

	out := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.toDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, nil
}

// EnsureIndexes creates the listing indexes.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}
