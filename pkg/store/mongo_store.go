package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"garagehub/pkg/domain"
)

// MongoStore implements Store on a MongoDB database, one collection per
// entity type.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database

	cars              mongoCars
	customers         mongoCustomers
	storageItems      mongoStorageItems
	usedItems         mongoColl[domain.UsedItem]
	tools             mongoColl[domain.Tool]
	suppliers         mongoColl[domain.Supplier]
	repairs           mongoRepairs
	repairFinishes    mongoColl[domain.RepairFinish]
	tipulim           mongoColl[domain.Tipul]
	tipulGroups       mongoColl[domain.TipulGroup]
	areas             mongoColl[domain.Area]
	cameras           mongoColl[domain.Camera]
	storageCategories mongoColl[domain.StorageCategory]
	toolCategories    mongoColl[domain.ToolCategory]
	errorCodes        mongoErrorCodes
}

// NewMongoStore connects, verifies the server is reachable, and ensures
// the unique plate index on the cars collection.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(dbName)

	s := &MongoStore{client: client, db: db}
	s.cars = mongoCars{mongoColl[domain.Car]{db.Collection("cars")}}
	s.customers = mongoCustomers{mongoColl[domain.Customer]{db.Collection("customers")}}
	s.storageItems = mongoStorageItems{mongoColl[domain.StorageItem]{db.Collection("storage")}}
	s.usedItems = mongoColl[domain.UsedItem]{db.Collection("used")}
	s.tools = mongoColl[domain.Tool]{db.Collection("tools")}
	s.suppliers = mongoColl[domain.Supplier]{db.Collection("suppliers")}
	s.repairs = mongoRepairs{mongoColl[domain.Repair]{db.Collection("repairs")}}
	s.repairFinishes = mongoColl[domain.RepairFinish]{db.Collection("repairs_finish")}
	s.tipulim = mongoColl[domain.Tipul]{db.Collection("tipulim")}
	s.tipulGroups = mongoColl[domain.TipulGroup]{db.Collection("tipulim_groups")}
	s.areas = mongoColl[domain.Area]{db.Collection("areas")}
	s.cameras = mongoColl[domain.Camera]{db.Collection("cameras")}
	s.storageCategories = mongoColl[domain.StorageCategory]{db.Collection("storage_categories")}
	s.toolCategories = mongoColl[domain.ToolCategory]{db.Collection("tool_categories")}
	s.errorCodes = mongoErrorCodes{mongoColl[domain.ErrorCode]{db.Collection("error_codes")}}

	_, err = s.cars.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "license_plate_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure plate index: %w", err)
	}
	return s, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Cars() CarStore                                        { return &s.cars }
func (s *MongoStore) Customers() CustomerStore                              { return &s.customers }
func (s *MongoStore) StorageItems() StorageItemStore                        { return &s.storageItems }
func (s *MongoStore) UsedItems() Collection[domain.UsedItem]                { return &s.usedItems }
func (s *MongoStore) Tools() Collection[domain.Tool]                        { return &s.tools }
func (s *MongoStore) Suppliers() Collection[domain.Supplier]                { return &s.suppliers }
func (s *MongoStore) Repairs() RepairStore                                  { return &s.repairs }
func (s *MongoStore) RepairFinishes() Collection[domain.RepairFinish]       { return &s.repairFinishes }
func (s *MongoStore) Tipulim() Collection[domain.Tipul]                     { return &s.tipulim }
func (s *MongoStore) TipulGroups() Collection[domain.TipulGroup]            { return &s.tipulGroups }
func (s *MongoStore) Areas() Collection[domain.Area]                        { return &s.areas }
func (s *MongoStore) Cameras() Collection[domain.Camera]                    { return &s.cameras }
func (s *MongoStore) StorageCategories() Collection[domain.StorageCategory] { return &s.storageCategories }
func (s *MongoStore) ToolCategories() Collection[domain.ToolCategory]       { return &s.toolCategories }
func (s *MongoStore) ErrorCodes() ErrorCodeStore                            { return &s.errorCodes }

// mongoColl implements Collection for one mongo collection.
type mongoColl[T domain.Entity] struct {
	c *mongo.Collection
}

func (m *mongoColl[T]) List(ctx context.Context) ([]T, error) {
	cur, err := m.c.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", m.c.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.c.Name(), err)
	}
	return out, nil
}

func (m *mongoColl[T]) Get(ctx context.Context, id string) (T, bool, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *mongoColl[T]) findOne(ctx context.Context, filter bson.M) (T, bool, error) {
	var doc T
	err := m.c.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, false, nil
	}
	if err != nil {
		return doc, false, fmt.Errorf("find one %s: %w", m.c.Name(), err)
	}
	return doc, true, nil
}

func (m *mongoColl[T]) findAll(ctx context.Context, filter bson.M) ([]T, error) {
	cur, err := m.c.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", m.c.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.c.Name(), err)
	}
	return out, nil
}

func (m *mongoColl[T]) Insert(ctx context.Context, doc T) error {
	if _, err := m.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", m.c.Name(), err)
	}
	return nil
}

func (m *mongoColl[T]) Update(ctx context.Context, id string, patch Patch) (T, bool, error) {
	return m.updateWhere(ctx, bson.M{"_id": id}, patch)
}

func (m *mongoColl[T]) updateWhere(ctx context.Context, filter bson.M, patch Patch) (T, bool, error) {
	var doc T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M(patch)}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, false, nil
	}
	if err != nil {
		return doc, false, fmt.Errorf("update %s: %w", m.c.Name(), err)
	}
	return doc, true, nil
}

func (m *mongoColl[T]) Delete(ctx context.Context, id string) error {
	return m.deleteWhere(ctx, bson.M{"_id": id})
}

func (m *mongoColl[T]) deleteWhere(ctx context.Context, filter bson.M) error {
	res, err := m.c.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete %s: %w", m.c.Name(), err)
	}
	switch {
	case res.DeletedCount == 0:
		return ErrNotFound
	case res.DeletedCount > 1:
		return ErrMultiDelete
	}
	return nil
}

type mongoCars struct {
	mongoColl[domain.Car]
}

func (m *mongoCars) GetByPlate(ctx context.Context, plate string) (domain.Car, bool, error) {
	return m.findOne(ctx, bson.M{"license_plate_number": plate})
}

func (m *mongoCars) UpdateByPlate(ctx context.Context, plate string, patch Patch) (domain.Car, bool, error) {
	return m.updateWhere(ctx, bson.M{"license_plate_number": plate}, patch)
}

func (m *mongoCars) DeleteByPlate(ctx context.Context, plate string) error {
	return m.deleteWhere(ctx, bson.M{"license_plate_number": plate})
}

func (m *mongoCars) SetGovernmentData(ctx context.Context, id string, data domain.Document) (bool, error) {
	res, err := m.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"government_data": data}})
	if err != nil {
		return false, fmt.Errorf("set government data: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (m *mongoCars) ListMissingGovernmentData(ctx context.Context) ([]domain.Car, error) {
	return m.findAll(ctx, bson.M{"government_data": bson.M{"$exists": false}})
}

type mongoCustomers struct {
	mongoColl[domain.Customer]
}

func (m *mongoCustomers) FindWithAnyPlate(ctx context.Context, plates []string, excludeID string) (domain.Customer, bool, error) {
	if len(plates) == 0 {
		return domain.Customer{}, false, nil
	}
	filter := bson.M{"cars": bson.M{"$in": plates}}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return m.findOne(ctx, filter)
}

func (m *mongoCustomers) ListByPlate(ctx context.Context, plate string) ([]domain.Customer, error) {
	return m.findAll(ctx, bson.M{"cars": plate})
}

func (m *mongoCustomers) AddCar(ctx context.Context, id, plate string) (bool, error) {
	res, err := m.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"cars": plate}})
	if err != nil {
		return false, fmt.Errorf("add car: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (m *mongoCustomers) RemoveCar(ctx context.Context, id, plate string) (bool, error) {
	res, err := m.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"cars": plate}})
	if err != nil {
		return false, fmt.Errorf("remove car: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

type mongoStorageItems struct {
	mongoColl[domain.StorageItem]
}

func (m *mongoStorageItems) ListByCategory(ctx context.Context, category string) ([]domain.StorageItem, error) {
	return m.findAll(ctx, bson.M{"category": category})
}

func (m *mongoStorageItems) GetByBarcode(ctx context.Context, barcode string) (domain.StorageItem, bool, error) {
	return m.findOne(ctx, bson.M{"barcode": barcode})
}

type mongoRepairs struct {
	mongoColl[domain.Repair]
}

func (m *mongoRepairs) AddAttachment(ctx context.Context, id, key string) error {
	res, err := m.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"attachments": key}})
	if err != nil {
		return fmt.Errorf("add attachment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoErrorCodes struct {
	mongoColl[domain.ErrorCode]
}

func (m *mongoErrorCodes) GetByCode(ctx context.Context, code string) (domain.ErrorCode, bool, error) {
	return m.findOne(ctx, bson.M{"code": code})
}
