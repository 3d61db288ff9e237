// Package qdrant implements vector.Repository against a Qdrant instance over
// gRPC.
package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/vector"
)

// Repository is a Qdrant-backed similarity index.
type Repository struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string
}

// New connects to Qdrant.
func New(ctx context.Context, host string, port int, collection string) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Repository{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: collection,
	}, nil
}

func (r *Repository) Upsert(ctx context.Context, doc vector.Document, embedding []float32) error {
	point := &pb.PointStruct{
		Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: doc.ID}},
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: embedding}}},
		Payload: map[string]*pb.Value{
			"run_id":      {Kind: &pb.Value_StringValue{StringValue: doc.RunID}},
			"system_name": {Kind: &pb.Value_StringValue{StringValue: doc.SystemName}},
			"text":        {Kind: &pb.Value_StringValue{StringValue: doc.Text}},
		},
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         []*pb.PointStruct{point},
	})
	return err
}

func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]vector.SearchResult, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}

	results := make([]vector.SearchResult, len(resp.Result))
	for i, pt := range resp.Result {
		doc := vector.Document{ID: pt.Id.GetUuid()}
		for k, v := range pt.Payload {
			switch k {
			case "run_id":
				doc.RunID = v.GetStringValue()
			case "system_name":
				doc.SystemName = v.GetStringValue()
			case "text":
				doc.Text = v.GetStringValue()
			}
		}
		results[i] = vector.SearchResult{Document: doc, Score: pt.Score}
	}
	return results, nil
}

func (r *Repository) Close() error {
	return r.conn.Close()
}

var _ vector.Repository = (*Repository)(nil)
