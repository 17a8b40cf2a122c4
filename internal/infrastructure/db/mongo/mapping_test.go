package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

func TestProductMapping_PreservesPrice(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := &domain.Product{ID: "p1", Name: "Deck", Price: decimal.RequireFromString("1299.95"), Stock: 4, CreatedAt: now, UpdatedAt: now}

	doc, err := toMongoProduct(in)
	if err != nil {
		t.Fatalf("toMongoProduct: %v", err)
	}
	if doc.Price.String() != "1299.95" {
		t.Errorf("unexpected Decimal128: %s", doc.Price)
	}

	out, err := doc.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if !out.Price.Equal(in.Price) || out.Stock != 4 || !out.CreatedAt.Equal(now) {
		t.Errorf("mapping changed product: %+v", out)
	}
}

func TestOrderMapping_PreservesLines(t *testing.T) {
	in := &domain.Order{
		ID:     "o1",
		UserID: "u1",
		Items: []domain.OrderLine{
			{ProductID: "a", Name: "A", Price: decimal.RequireFromString("9.99"), Quantity: 3},
		},
		Total:     decimal.RequireFromString("29.97"),
		CreatedAt: time.Now().UTC(),
	}

	doc, err := toMongoOrder(in)
	if err != nil {
		t.Fatalf("toMongoOrder: %v", err)
	}
	out, err := doc.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if out.Total.StringFixed(2) != "29.97" || len(out.Items) != 1 || out.Items[0].Quantity != 3 {
		t.Errorf("mapping changed order: %+v", out)
	}
}

func TestUserMapping_NormalizesEmailKey(t *testing.T) {
	doc := toMongoUser(&domain.User{ID: "u1", Email: "Alice@Example.com"})
	if doc.EmailKey != "alice@example.com" {
		t.Errorf("unexpected email key %q", doc.EmailKey)
	}
	if doc.toDomain().Email != "Alice@Example.com" {
		t.Error("display email must be preserved")
	}
}

func TestProductQuery(t *testing.T) {
	minPrice := decimal.RequireFromString("10")
	query, opts, err := productQuery(ports.ProductFilter{
		Category: "DJ (pro)",
		Search:   "sm7",
		MinPrice: &minPrice,
		Sort:     ports.SortPriceDesc,
	})
	if err != nil {
		t.Fatalf("productQuery: %v", err)
	}

	cat, ok := query["category"].(primitive.Regex)
	if !ok || cat.Pattern != `DJ \(pro\)` || cat.Options != "i" {
		t.Errorf("unexpected category clause: %#v", query["category"])
	}
	if or, ok := query["$or"].(bson.A); !ok || len(or) != 4 {
		t.Errorf("expected 4 search clauses, got %#v", query["$or"])
	}
	price, ok := query["price"].(bson.M)
	if !ok || price["$gte"] == nil || price["$lte"] != nil {
		t.Errorf("unexpected price clause: %#v", query["price"])
	}
	sort, ok := opts.Sort.(bson.D)
	if !ok || sort[0].Key != "price" || sort[0].Value != -1 {
		t.Errorf("unexpected sort: %#v", opts.Sort)
	}
}

func TestProductQuery_EmptyFilterKeepsInsertionOrder(t *testing.T) {
	query, opts, err := productQuery(ports.ProductFilter{})
	if err != nil {
		t.Fatalf("productQuery: %v", err)
	}
	if len(query) != 0 {
		t.Errorf("expected empty query, got %#v", query)
	}
	sort := opts.Sort.(bson.D)
	if sort[0].Key != "created_at" || sort[0].Value != 1 {
		t.Errorf("unexpected default sort: %#v", sort)
	}
}
