// Package qdrant provides a Qdrant vector database driver implementation.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	qd "github.com/qdrant/go-client/qdrant"

	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/vector"
)

const (
	// DefaultHost is the default Qdrant server host.
	DefaultHost = "localhost"

	// DefaultPort is the default Qdrant gRPC port.
	DefaultPort = 6334

	// DefaultCollectionName is the default collection name for storing
	// recall embeddings.
	DefaultCollectionName = "studyhall"
)

// Driver implements vector.Driver using Qdrant's gRPC API.
type Driver struct {
	client         *qd.Client
	collectionName string
	logger         *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant server host (e.g., "localhost").
	// Defaults to DefaultHost if empty.
	Host string

	// Port is the Qdrant gRPC port.
	// Defaults to DefaultPort if zero.
	Port int

	// APIKey authenticates against the server. Optional for local instances.
	APIKey string

	// UseTLS enables TLS on the gRPC connection. Required for Qdrant Cloud.
	UseTLS bool

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the number of dimensions for the embedding vectors.
	// Used when the collection does not exist yet and must be created.
	Dimensions uint
}

// NewDriver creates a new Qdrant vector driver.
func NewDriver(ctx context.Context, c Config, log *slog.Logger) (*Driver, error) {
	if log == nil {
		log = logger.Nop()
	}

	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	client, err := qd.NewClient(&qd.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrConnection, err)
	}

	d := &Driver{
		client:         client,
		collectionName: collectionName,
		logger:         log,
	}

	if err := d.ensureCollection(ctx, uint64(c.Dimensions)); err != nil {
		client.Close()
		return nil, err
	}

	log.Info("connected to Qdrant",
		"host", host,
		"port", port,
		"collection", collectionName,
		"dimensions", c.Dimensions,
	)

	return d, nil
}

// ensureCollection creates the collection if it does not exist yet.
func (d *Driver) ensureCollection(ctx context.Context, dimensions uint64) error {
	exists, err := d.client.CollectionExists(ctx, d.collectionName)
	if err != nil {
		return fmt.Errorf("%w: checking collection %q: %v", vector.ErrConnection, d.collectionName, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qd.CreateCollection{
		CollectionName: d.collectionName,
		VectorsConfig: qd.NewVectorsConfig(&qd.VectorParams{
			Size:     dimensions,
			Distance: qd.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", d.collectionName, err)
	}
	return nil
}

// pointID maps a document ID to a Qdrant point ID. Qdrant only accepts UUIDs
// or unsigned integers as point IDs, so the string document ID is hashed into
// a deterministic UUID. The original ID travels in the point payload.
func pointID(docID string) *qd.PointId {
	return qd.NewID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String())
}

// documentFromPayload rebuilds a Document from the stored point payload.
func documentFromPayload(payload map[string]*qd.Value) vector.Document {
	return vector.Document{
		ID:   payload["doc_id"].GetStringValue(),
		Hash: payload["hash"].GetStringValue(),
	}
}

// Add stores documents with their embeddings.
// Upserts by point ID, so re-adding a document updates it in place.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qd.PointStruct, 0, len(docs))
	for _, doc := range docs {
		points = append(points, &qd.PointStruct{
			Id:      pointID(doc.ID),
			Vectors: qd.NewVectors(doc.Embedding...),
			Payload: qd.NewValueMap(map[string]any{
				"doc_id": doc.ID,
				"hash":   doc.Hash,
			}),
		})
	}

	_, err := d.client.Upsert(ctx, &qd.UpsertPoints{
		CollectionName: d.collectionName,
		Points:         points,
		Wait:           qd.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("added documents to qdrant",
		"count", len(docs),
	)

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	points, err := d.client.Query(ctx, &qd.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qd.NewQuery(embedding...),
		Limit:          qd.PtrOf(uint64(topK)),
		WithPayload:    qd.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		results = append(results, vector.QueryResult{
			Document: documentFromPayload(p.GetPayload()),
			// Cosine scores from Qdrant are already similarities.
			Score: p.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant",
		"results", len(results),
	)

	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*qd.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, pointID(id))
	}

	points, err := d.client.Get(ctx, &qd.GetPoints{
		CollectionName: d.collectionName,
		Ids:            pointIDs,
		WithPayload:    qd.NewWithPayload(true),
		WithVectors:    qd.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving points: %w", err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		doc := documentFromPayload(p.GetPayload())
		if v := p.GetVectors().GetVector(); v != nil {
			doc.Embedding = v.GetData()
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qd.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, pointID(id))
	}

	_, err := d.client.Delete(ctx, &qd.DeletePoints{
		CollectionName: d.collectionName,
		Points:         qd.NewPointsSelector(pointIDs...),
		Wait:           qd.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}

	d.logger.Debug("deleted documents from qdrant",
		"count", len(ids),
	)

	return nil
}

// Close releases the gRPC connection held by the driver.
func (d *Driver) Close() error {
	return d.client.Close()
}
