package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore maps each collection to a Firestore collection of {seq, doc} documents.
type Firestore struct {
	client *firestore.Client
}

func OpenFirestore(ctx context.Context, projectID, credentialsFile string) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Firestore{client: client}, nil
}

func (f *Firestore) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	snaps, err := f.client.Collection(collection).OrderBy("seq", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(snaps))
	for _, snap := range snaps {
		data, err := json.Marshal(snap.Data()["doc"])
		if err != nil {
			return nil, fmt.Errorf("doc %s: %w", snap.Ref.ID, err)
		}
		out = append(out, Record{ID: snap.Ref.ID, Data: data})
	}
	return out, nil
}

func (f *Firestore) ReplaceAll(ctx context.Context, collection string, records []Record) error {
	coll := f.client.Collection(collection)
	existing, err := coll.Documents(ctx).GetAll()
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(records))
	for _, r := range records {
		keep[r.ID] = true
	}

	bw := f.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for _, snap := range existing {
		if keep[snap.Ref.ID] {
			continue
		}
		job, err := bw.Delete(snap.Ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	base := time.Now().UnixNano()
	for i, r := range records {
		doc, err := toMap(r)
		if err != nil {
			bw.End()
			return err
		}
		job, err := bw.Set(coll.Doc(r.ID), map[string]any{"seq": base + int64(i), "doc": doc})
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Firestore) Upsert(ctx context.Context, collection string, rec Record) error {
	doc, err := toMap(rec)
	if err != nil {
		return err
	}
	ref := f.client.Collection(collection).Doc(rec.ID)
	return f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		seq := time.Now().UnixNano()
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if v, ok := snap.Data()["seq"].(int64); ok {
				seq = v
			}
		case status.Code(err) != codes.NotFound:
			return err
		}
		return tx.Set(ref, map[string]any{"seq": seq, "doc": doc})
	})
}

func (f *Firestore) Delete(ctx context.Context, collection, id string) (bool, error) {
	ref := f.client.Collection(collection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (f *Firestore) Close() error { return f.client.Close() }

func toMap(r Record) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(r.Data, &m); err != nil {
		return nil, fmt.Errorf("doc %s: %w", r.ID, err)
	}
	return m, nil
}
