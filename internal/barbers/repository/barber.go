package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	barberserrors "barbershop/internal/barbers/errors"
	"barbershop/pkg/config"
	mongotx "barbershop/pkg/db/mongo"
	"barbershop/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Barbers"
)

type mongoBarberRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	tx         mongotx.Transactor
}

type BarberRepository interface {
	Create(ctx context.Context, barber *model.Barber) error
	FindByID(ctx context.Context, id string) (*model.Barber, error)
	FindByUserID(ctx context.Context, userID string) (*model.Barber, error)
	FindActive(ctx context.Context) ([]*model.Barber, error)
	FindAll(ctx context.Context) ([]*model.Barber, error)
	Update(ctx context.Context, id string, update *model.BarberUpdate, at time.Time) (*model.Barber, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBarberRepository(cfg *config.Config) BarberRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBarberRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		tx:         mongotx.NewTransactor(cfg.Client.Mongo),
	}
}

func (r *mongoBarberRepository) Create(ctx context.Context, barber *model.Barber) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if barber.CreatedAt.IsZero() {
		barber.CreatedAt = time.Now().UTC()
	}
	barber.CreatedAt = barber.CreatedAt.UTC().Truncate(time.Millisecond)
	barber.UpdatedAt = barber.CreatedAt

	result, err := r.collection.InsertOne(ctx, barber)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", barberserrors.ErrDuplicateUser, barber.UserID)
		}
		return fmt.Errorf("failed to create barber: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		barber.ID = oid.Hex()
	}

	return nil
}

func (r *mongoBarberRepository) FindByID(ctx context.Context, id string) (*model.Barber, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", barberserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, id)
}

func (r *mongoBarberRepository) FindByUserID(ctx context.Context, userID string) (*model.Barber, error) {
	return r.findOne(ctx, bson.M{"user_id": userID}, userID)
}

func (r *mongoBarberRepository) findOne(ctx context.Context, filter bson.M, ref string) (*model.Barber, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var barber model.Barber
	err := r.collection.FindOne(ctx, filter).Decode(&barber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", barberserrors.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to find barber: %w", err)
	}
	return &barber, nil
}

func (r *mongoBarberRepository) FindActive(ctx context.Context) ([]*model.Barber, error) {
	return r.find(ctx, bson.M{"active": true})
}

func (r *mongoBarberRepository) FindAll(ctx context.Context) ([]*model.Barber, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoBarberRepository) find(ctx context.Context, filter bson.M) ([]*model.Barber, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "display_name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query barbers: %w", err)
	}
	defer cursor.Close(ctx)

	barbers := make([]*model.Barber, 0)
	if err := cursor.All(ctx, &barbers); err != nil {
		return nil, fmt.Errorf("failed to decode barbers: %w", err)
	}
	return barbers, nil
}

// Update applies the non-nil fields of update and returns the stored result.
func (r *mongoBarberRepository) Update(ctx context.Context, id string, update *model.BarberUpdate, at time.Time) (*model.Barber, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", barberserrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": at.UTC().Truncate(time.Millisecond)}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Specialties != nil {
		set["specialties"] = *update.Specialties
	}
	if update.Active != nil {
		set["active"] = *update.Active
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var barber model.Barber
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&barber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", barberserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update barber: %w", err)
	}

	return &barber, nil
}

func (r *mongoBarberRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.tx.ExecuteTransaction(ctx, fn)
}
