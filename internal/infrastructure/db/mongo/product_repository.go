package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

const collectionProducts = "products"

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type mongoProduct struct {
	ID          string               `bson:"_id"`
	Slug        string               `bson:"slug"`
	Name        string               `bson:"name"`
	Brand       string               `bson:"brand,omitempty"`
	Model       string               `bson:"model,omitempty"`
	Price       primitive.Decimal128 `bson:"price"`
	Category    string               `bson:"category"`
	Description string               `bson:"description"`
	Image       string               `bson:"image"`
	Stock       int                  `bson:"stock"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func toMongoProduct(p *domain.Product) (mongoProduct, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return mongoProduct{}, err
	}
	return mongoProduct{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Brand:       p.Brand,
		Model:       p.Model,
		Price:       price,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}, nil
}

func (m mongoProduct) toDomain() (*domain.Product, error) {
	price, err := fromDecimal128(m.Price)
	if err != nil {
		return nil, err
	}
	return &domain.Product{
		ID:          m.ID,
		Slug:        m.Slug,
		Name:        m.Name,
		Brand:       m.Brand,
		Model:       m.Model,
		Price:       price,
		Category:    m.Category,
		Description: m.Description,
		Image:       m.Image,
		Stock:       m.Stock,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}

// productQuery translates a filter into a Mongo query and find options.
func productQuery(f ports.ProductFilter) (bson.M, *options.FindOptions, error) {
	query := bson.M{}
	if f.Category != "" {
		query["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Category), Options: "i"}
	}
	if f.Brand != "" {
		query["brand"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Brand), Options: "i"}
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"brand": re},
			bson.M{"model": re},
			bson.M{"category": re},
		}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			v, err := toDecimal128(*f.MinPrice)
			if err != nil {
				return nil, nil, err
			}
			price["$gte"] = v
		}
		if f.MaxPrice != nil {
			v, err := toDecimal128(*f.MaxPrice)
			if err != nil {
				return nil, nil, err
			}
			price["$lte"] = v
		}
		query["price"] = price
	}

	opts := options.Find()
	switch f.Sort {
	case ports.SortPriceAsc:
		opts.SetSort(bson.D{{Key: "price", Value: 1}, {Key: "created_at", Value: 1}})
	case ports.SortPriceDesc:
		opts.SetSort(bson.D{{Key: "price", Value: -1}, {Key: "created_at", Value: 1}})
	case ports.SortName:
		opts.SetSort(bson.D{{Key: "name", Value: 1}}).
			SetCollation(&options.Collation{Locale: "en", Strength: 2})
	case ports.SortNewest:
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	default:
		opts.SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	}
	return query, opts, nil
}

func (r *ProductRepository) List(ctx context.Context, filter ports.ProductFilter) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, opts, err := productQuery(filter)
	if err != nil {
		return nil, err
	}
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []mongoProduct
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoProduct
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain()
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoProduct(p)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoProduct(p)
	if err != nil {
		return err
	}
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoProduct
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return doc.toDomain()
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *ProductRepository) Brands(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "brand")
}

func (r *ProductRepository) distinct(ctx context.Context, field string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values, err := r.col.Distinct(ctx, field, bson.M{field: bson.M{"$nin": bson.A{"", nil}}})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

// EnsureIndexes creates indexes for the catalog filters and sorts.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
	})
	return err
}
