// Package mongostore keeps the mute registry in a single MongoDB document.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/marslan-786/group-guard/internal/mute"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentID = "muted"

// Group ids contain dots, so they are stored as values rather than as
// field names.
type groupEntry struct {
	Group   string   `bson:"group"`
	Members []string `bson:"members"`
}

type registryDocument struct {
	ID     string       `bson:"_id"`
	Groups []groupEntry `bson:"groups"`
}

type Persister struct {
	coll *mongo.Collection
}

var _ mute.Persister = (*Persister)(nil)

func New(coll *mongo.Collection) *Persister {
	return &Persister{coll: coll}
}

// Connect opens a client and checks the deployment answers.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func (p *Persister) Load(ctx context.Context) (mute.Registry, error) {
	var doc registryDocument
	err := p.coll.FindOne(ctx, bson.M{"_id": documentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return mute.Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find mute registry: %w", err)
	}
	return fromDocument(doc), nil
}

func (p *Persister) Save(ctx context.Context, reg mute.Registry) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := p.coll.ReplaceOne(ctx, bson.M{"_id": documentID}, toDocument(reg), opts); err != nil {
		return fmt.Errorf("replace mute registry: %w", err)
	}
	return nil
}

func toDocument(reg mute.Registry) registryDocument {
	doc := registryDocument{ID: documentID, Groups: make([]groupEntry, 0, len(reg))}
	for group, members := range reg {
		doc.Groups = append(doc.Groups, groupEntry{Group: group, Members: append([]string{}, members...)})
	}
	sort.Slice(doc.Groups, func(i, j int) bool { return doc.Groups[i].Group < doc.Groups[j].Group })
	return doc
}

func fromDocument(doc registryDocument) mute.Registry {
	reg := make(mute.Registry, len(doc.Groups))
	for _, g := range doc.Groups {
		reg[g.Group] = append(reg[g.Group], g.Members...)
	}
	return reg
}
