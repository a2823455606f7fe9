package stores

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"azzipizza/apperr"
	"azzipizza/models"
)

type CreateMenuInput struct {
	Name        string
	Description string
	Price       float64
	Discount    float64
	Category    string
	Image       string
	Ingredients []models.Ingredient
	Available   *bool
}

// MenuPatch carries a partial update; nil fields retain their prior value.
type MenuPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Discount    *float64
	Category    *string
	Image       *string
	Ingredients *[]models.Ingredient
	Available   *bool
}

type MenuStore interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.MenuItem, error)
	Create(ctx context.Context, input CreateMenuInput) (*models.MenuItem, error)
	Update(ctx context.Context, id primitive.ObjectID, patch MenuPatch) (*models.MenuItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error)
}

type MongoMenuStore struct {
	coll *mongo.Collection
}

func NewMongoMenuStore(coll *mongo.Collection) *MongoMenuStore {
	return &MongoMenuStore{coll: coll}
}

func (s *MongoMenuStore) List(ctx context.Context) ([]models.MenuItem, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Persistence("menu list", err)
	}

	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, apperr.Persistence("menu list", err)
	}
	return items, nil
}

func (s *MongoMenuStore) Get(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("menu item", id.Hex())
	}
	if err != nil {
		return nil, apperr.Persistence("menu get", err)
	}
	return &item, nil
}

func (s *MongoMenuStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.MenuItem, error) {
	found := map[primitive.ObjectID]models.MenuItem{}
	if len(ids) == 0 {
		return found, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Persistence("menu lookup", err)
	}

	var items []models.MenuItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, apperr.Persistence("menu lookup", err)
	}
	for _, item := range items {
		found[item.ID] = item
	}
	return found, nil
}

func validateCreateMenu(input *CreateMenuInput) error {
	if input.Name == "" {
		return apperr.Validation("name", "name is required")
	}
	if input.Description == "" {
		return apperr.Validation("description", "description is required")
	}
	if input.Price <= 0 {
		return apperr.Validation("price", "price must be greater than 0")
	}
	if input.Discount < 0 || input.Discount > 100 {
		return apperr.Validation("discount", "discount must be between 0 and 100")
	}
	if input.Category == "" {
		input.Category = models.DefaultCategory
	}
	if !models.ValidCategory(input.Category) {
		return apperr.Validationf("category", "unknown category %q", input.Category)
	}
	return nil
}

func (s *MongoMenuStore) Create(ctx context.Context, input CreateMenuInput) (*models.MenuItem, error) {
	if err := validateCreateMenu(&input); err != nil {
		return nil, err
	}

	available := true
	if input.Available != nil {
		available = *input.Available
	}
	ingredients := input.Ingredients
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}

	now := time.Now()
	item := models.MenuItem{
		ID:          primitive.NewObjectID(),
		Name:        models.NormalizeName(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Discount:    input.Discount,
		Category:    input.Category,
		Image:       input.Image,
		Ingredients: ingredients,
		Available:   available,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.coll.InsertOne(ctx, item); err != nil {
		return nil, apperr.Persistence("menu create", err)
	}
	return &item, nil
}

func (s *MongoMenuStore) Update(ctx context.Context, id primitive.ObjectID, patch MenuPatch) (*models.MenuItem, error) {
	update := bson.M{}
	if patch.Name != nil {
		update["name"] = models.NormalizeName(*patch.Name)
	}
	if patch.Description != nil {
		update["description"] = *patch.Description
	}
	if patch.Price != nil {
		if *patch.Price <= 0 {
			return nil, apperr.Validation("price", "price must be greater than 0")
		}
		update["price"] = *patch.Price
	}
	if patch.Discount != nil {
		if *patch.Discount < 0 || *patch.Discount > 100 {
			return nil, apperr.Validation("discount", "discount must be between 0 and 100")
		}
		update["discount"] = *patch.Discount
	}
	if patch.Category != nil {
		if !models.ValidCategory(*patch.Category) {
			return nil, apperr.Validationf("category", "unknown category %q", *patch.Category)
		}
		update["category"] = *patch.Category
	}
	if patch.Image != nil {
		update["image"] = *patch.Image
	}
	if patch.Ingredients != nil {
		update["ingredients"] = *patch.Ingredients
	}
	if patch.Available != nil {
		update["available"] = *patch.Available
	}
	update["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.MenuItem
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("menu item", id.Hex())
	}
	if err != nil {
		return nil, apperr.Persistence("menu update", err)
	}
	return &updated, nil
}

func (s *MongoMenuStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	var deleted models.MenuItem
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("menu item", id.Hex())
	}
	if err != nil {
		return nil, apperr.Persistence("menu delete", err)
	}
	return &deleted, nil
}
