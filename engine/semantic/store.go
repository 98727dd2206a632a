// Package semantic is the sole owner of all Qdrant operations: collection
// lifecycle, batched upserts at index time, and nearest-neighbor search at
// query time.
package semantic

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// VectorStore wraps one named Qdrant collection.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a VectorStore connected to Qdrant at the given gRPC address.
func New(addr string, collection string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	return v.conn.Close()
}

// Collection returns the collection name this store operates on.
func (v *VectorStore) Collection() string { return v.collection }

// Recreate drops the collection if it exists and creates it fresh with the
// given vector dimensionality. A reindex run is a full rebuild, never an
// incremental upsert.
func (v *VectorStore) Recreate(ctx context.Context, dims int) error {
	exists, err := v.exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if err := v.Drop(ctx); err != nil {
			return err
		}
	}

	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", v.collection, err)
	}
	return nil
}

// Drop deletes the collection.
func (v *VectorStore) Drop(ctx context.Context) error {
	_, err := v.collections.Delete(ctx, &pb.DeleteCollection{
		CollectionName: v.collection,
	})
	if err != nil {
		return fmt.Errorf("semantic: delete collection %s: %w", v.collection, err)
	}
	return nil
}

func (v *VectorStore) exists(ctx context.Context) (bool, error) {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return true, nil
		}
	}
	return false, nil
}

// Upsert stores embedded chunk records. Called by engine/ingest in batches.
func (v *VectorStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: r.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: recordPayload(r),
		}
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(records), err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (v *VectorStore) Count(ctx context.Context) (uint64, error) {
	exact := true
	resp, err := v.points.Count(ctx, &pb.CountPoints{
		CollectionName: v.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("semantic: count: %w", err)
	}
	return resp.GetResult().GetCount(), nil
}

// Search performs k-NN similarity search and returns hits ordered most
// similar first. An empty collection yields an empty slice, not an error.
func (v *VectorStore) Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	resp, err := v.points.Search(ctx, &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, p := range resp.GetResult() {
		results[i] = resultFromPayload(p.GetId().GetUuid(), p.GetScore(), p.GetPayload())
	}
	return results, nil
}

// payloadKeys reserved for the chunk body and identity; everything else in
// the payload is flattened document metadata.
const (
	payloadContent = "content"
	payloadChunkID = "chunk_id"
)

func recordPayload(r Record) map[string]*pb.Value {
	payload := make(map[string]*pb.Value, len(r.Meta)+2)
	payload[payloadContent] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: r.Content}}
	payload[payloadChunkID] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: r.ChunkID}}
	for k, val := range r.Meta {
		payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: val}}
	}
	return payload
}

func resultFromPayload(id string, score float32, payload map[string]*pb.Value) SearchResult {
	sr := SearchResult{
		ID:       id,
		Score:    score,
		Distance: 1 - score,
		Meta:     make(map[string]string),
	}
	for k, val := range payload {
		s := val.GetStringValue()
		switch k {
		case payloadContent:
			sr.Content = s
		case payloadChunkID:
			sr.ChunkID = s
		default:
			sr.Meta[k] = s
		}
	}
	return sr
}
