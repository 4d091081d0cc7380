package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sweetshop/internal/model"
)

type sweetDocument struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Category    string               `bson:"category"`
	Description string               `bson:"description,omitempty"`
	Price       primitive.Decimal128 `bson:"price"`
	Quantity    int                  `bson:"quantity"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func newSweetDocument(s *model.Sweet) (sweetDocument, error) {
	price, err := toDecimal128(s.Price)
	if err != nil {
		return sweetDocument{}, fmt.Errorf("encode price: %w", err)
	}
	return sweetDocument{
		ID:          s.ID.String(),
		Name:        s.Name,
		Category:    s.Category,
		Description: s.Description,
		Price:       price,
		Quantity:    s.Quantity,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}

func (d sweetDocument) toModel() (*model.Sweet, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode sweet id %q: %w", d.ID, err)
	}
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}
	return &model.Sweet{
		ID:          id,
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Price:       price,
		Quantity:    d.Quantity,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

const maxUpdateAttempts = 3

type mongoSweetRepository struct {
	coll *mongo.Collection
}

// NewMongoSweetRepository builds a MongoDB-backed sweet repository.
func NewMongoSweetRepository(db *mongo.Database) SweetRepository {
	return &mongoSweetRepository{coll: db.Collection(sweetsCollection)}
}

func (r *mongoSweetRepository) Create(ctx context.Context, sweet *model.Sweet) error {
	sweet.Normalize()
	if err := sweet.Validate(); err != nil {
		return err
	}
	if sweet.ID == uuid.Nil {
		sweet.ID = uuid.New()
	}
	now := time.Now().UTC()
	sweet.CreatedAt, sweet.UpdatedAt = now, now

	doc, err := newSweetDocument(sweet)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert sweet: %w", err)
	}
	return nil
}

func (r *mongoSweetRepository) List(ctx context.Context) ([]model.Sweet, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoSweetRepository) Search(ctx context.Context, filter SweetFilter) ([]model.Sweet, error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = containsRegex(filter.Name)
	}
	if filter.Category != "" {
		query["category"] = containsRegex(filter.Category)
	}

	price := bson.M{}
	if filter.MinPrice != nil {
		min, err := toDecimal128(*filter.MinPrice)
		if err != nil {
			return nil, fmt.Errorf("encode min price: %w", err)
		}
		price["$gte"] = min
	}
	if filter.MaxPrice != nil {
		max, err := toDecimal128(*filter.MaxPrice)
		if err != nil {
			return nil, fmt.Errorf("encode max price: %w", err)
		}
		price["$lte"] = max
	}
	if len(price) > 0 {
		query["price"] = price
	}
	return r.find(ctx, query)
}

func (r *mongoSweetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Sweet, error) {
	var doc sweetDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find sweet: %w", err)
	}
	return doc.toModel()
}

// Update replaces the document only if it was not modified since it was read,
// re-reading and re-applying on a lost race.
func (r *mongoSweetRepository) Update(ctx context.Context, id uuid.UUID, apply func(*model.Sweet) error) (*model.Sweet, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		sweet, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		readAt := sweet.UpdatedAt

		if err := apply(sweet); err != nil {
			return nil, err
		}
		sweet.Normalize()
		if err := sweet.Validate(); err != nil {
			return nil, err
		}
		sweet.ID = id
		sweet.UpdatedAt = time.Now().UTC()

		doc, err := newSweetDocument(sweet)
		if err != nil {
			return nil, err
		}
		res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": id.String(), "updated_at": readAt}, doc)
		if err != nil {
			return nil, fmt.Errorf("replace sweet: %w", err)
		}
		if res.MatchedCount == 1 {
			return sweet, nil
		}
	}
	return nil, fmt.Errorf("replace sweet %s: concurrent modification", id)
}

func (r *mongoSweetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoSweetRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (*model.Sweet, error) {
	return r.adjustStock(ctx, bson.M{"_id": id.String(), "quantity": bson.M{"$gte": qty}}, -qty, ErrStockTooLow)
}

func (r *mongoSweetRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) (*model.Sweet, error) {
	return r.adjustStock(ctx, bson.M{"_id": id.String(), "quantity": bson.M{"$lte": MaxStock - qty}}, qty, ErrStockOverflow)
}

func (r *mongoSweetRepository) adjustStock(ctx context.Context, filter bson.M, delta int, conflict error) (*model.Sweet, error) {
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc sweetDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toModel()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update stock: %w", err)
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": filter["_id"]})
	if err != nil {
		return nil, fmt.Errorf("count sweet: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, conflict
}

func (r *mongoSweetRepository) find(ctx context.Context, filter bson.M) ([]model.Sweet, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find sweets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []sweetDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sweets: %w", err)
	}

	sweets := make([]model.Sweet, 0, len(docs))
	for _, d := range docs {
		s, err := d.toModel()
		if err != nil {
			return nil, err
		}
		sweets = append(sweets, *s)
	}
	return sweets, nil
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
