package content

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository stores one document per domain, upserted by domain name.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	// domain is the lookup key for every operation
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "domain", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Load(ctx context.Context, domain string) (*Document, error) {
	var d Document
	if err := r.col.FindOne(ctx, bson.M{"domain": domain}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *MongoRepository) Save(ctx context.Context, d *Document) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"domain": d.Domain}, bson.M{"$set": d}, opts)
	return err
}
