// Package neo4j implements graphstore.Repository on a Neo4j database. Each
// run becomes a Run node owning Component nodes; connections become CONNECTS
// relationships between components of the same run.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/graphstore"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/schema"
)

// Repository is a Neo4j-backed graph store.
type Repository struct {
	driver neo4j.DriverWithContext
}

// New connects to Neo4j and verifies connectivity.
func New(ctx context.Context, uri, username, password string) (*Repository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}
	return &Repository{driver: driver}, nil
}

// Close releases the driver.
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// StoreRun persists the run, its components, and its connections.
func (r *Repository) StoreRun(ctx context.Context, run *graphstore.StoredRun) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MERGE (r:Run {run_id: $run_id})
			SET r.system_name = $system_name,
			    r.created_at = $created_at
		`, map[string]any{
			"run_id":      run.RunID,
			"system_name": run.Graph.SystemName,
			"created_at":  run.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}

		for _, comp := range run.Graph.Components {
			params := map[string]any{
				"run_id": run.RunID,
				"name":   comp.Name,
				"type":   comp.Type,
			}
			_, err := tx.Run(ctx, `
				MATCH (r:Run {run_id: $run_id})
				MERGE (c:Component {run_id: $run_id, name: $name})
				SET c.type = $type
				MERGE (r)-[:CONTAINS]->(c)
			`, params)
			if err != nil {
				return nil, fmt.Errorf("storing component %q: %w", comp.Name, err)
			}
		}

		for _, conn := range run.Graph.Connections {
			_, err := tx.Run(ctx, `
				MATCH (src:Component {run_id: $run_id, name: $source})
				MATCH (dst:Component {run_id: $run_id, name: $destination})
				MERGE (src)-[rel:CONNECTS]->(dst)
				SET rel.label = $label
			`, map[string]any{
				"run_id":      run.RunID,
				"source":      endpointName(conn.Source),
				"destination": endpointName(conn.Destination),
				"label":       conn.Label,
			})
			if err != nil {
				return nil, fmt.Errorf("storing connection %s -> %s: %w", conn.Source, conn.Destination, err)
			}
		}
		return nil, nil
	})
	return err
}

// LoadRun retrieves a stored run and reassembles its graph.
func (r *Repository) LoadRun(ctx context.Context, runID string) (*graphstore.StoredRun, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		run := &graphstore.StoredRun{
			RunID: runID,
			Graph: &schema.ArchitectureGraph{},
		}

		rec, err := tx.Run(ctx, `
			MATCH (r:Run {run_id: $run_id})
			RETURN r.system_name AS system_name, r.created_at AS created_at
		`, map[string]any{"run_id": runID})
		if err != nil {
			return nil, err
		}
		single, err := rec.Single(ctx)
		if err != nil {
			return nil, fmt.Errorf("run %s not found: %w", runID, err)
		}
		if name, ok := single.Get("system_name"); ok {
			run.SystemName, _ = name.(string)
			run.Graph.SystemName = run.SystemName
		}
		if created, ok := single.Get("created_at"); ok {
			if s, ok := created.(string); ok {
				run.CreatedAt, _ = time.Parse(time.RFC3339, s)
			}
		}

		comps, err := tx.Run(ctx, `
			MATCH (:Run {run_id: $run_id})-[:CONTAINS]->(c:Component)
			RETURN c.name AS name, c.type AS type
			ORDER BY name
		`, map[string]any{"run_id": runID})
		if err != nil {
			return nil, err
		}
		for comps.Next(ctx) {
			record := comps.Record()
			comp := schema.Component{}
			if v, ok := record.Get("name"); ok {
				comp.Name, _ = v.(string)
			}
			if v, ok := record.Get("type"); ok {
				comp.Type, _ = v.(string)
			}
			run.Graph.Components = append(run.Graph.Components, comp)
		}

		conns, err := tx.Run(ctx, `
			MATCH (src:Component {run_id: $run_id})-[rel:CONNECTS]->(dst:Component {run_id: $run_id})
			RETURN src.name AS source, dst.name AS destination, rel.label AS label
			ORDER BY source, destination
		`, map[string]any{"run_id": runID})
		if err != nil {
			return nil, err
		}
		for conns.Next(ctx) {
			record := conns.Record()
			conn := schema.Connection{}
			if v, ok := record.Get("source"); ok {
				conn.Source, _ = v.(string)
			}
			if v, ok := record.Get("destination"); ok {
				conn.Destination, _ = v.(string)
			}
			if v, ok := record.Get("label"); ok {
				conn.Label, _ = v.(string)
			}
			run.Graph.Connections = append(run.Graph.Connections, conn)
		}
		return run, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*graphstore.StoredRun), nil
}

// endpointName strips a "/port" suffix so relationships key on the component
// name alone.
func endpointName(endpoint string) string {
	for i := 0; i < len(endpoint); i++ {
		if endpoint[i] == '/' {
			return endpoint[:i]
		}
	}
	return endpoint
}
