// api/audit/repository.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

const (
	decisionIndex  = "themis-decisions"
	accessLogIndex = "themis-audit-access"
)

type Repository interface {
	IndexDecision(ctx context.Context, decision Decision) error
	IndexAccessLog(ctx context.Context, entry AccessLogEntry) error
	QueryDecisions(ctx context.Context, from, to time.Time, page, limit int) ([]Decision, error)
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
}

// NewElasticsearchRepository creates a new repository with a given Elasticsearch client URL.
func NewElasticsearchRepository(esURL string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient}, nil
}

// IndexDecision appends one evaluator decision to the decision index.
func (r *ElasticsearchRepository) IndexDecision(ctx context.Context, decision Decision) error {
	data, err := json.Marshal(decision)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      decisionIndex,
		DocumentID: uuid.New().String(),
		Body:       strings.NewReader(string(data)),
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing decision: %s", res.String())
	}

	return nil
}

// IndexAccessLog appends one meta-audit record to the access-log index.
func (r *ElasticsearchRepository) IndexAccessLog(ctx context.Context, entry AccessLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      accessLogIndex,
		DocumentID: uuid.New().String(),
		Body:       strings.NewReader(string(data)),
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing access log: %s", res.String())
	}

	return nil
}

// QueryDecisions returns raw decisions within a time frame, newest first,
// paged. Callers are responsible for anonymizing before exposure.
func (r *ElasticsearchRepository) QueryDecisions(ctx context.Context, from, to time.Time, page, limit int) ([]Decision, error) {
	var buf strings.Builder
	query := map[string]interface{}{
		"from": (page - 1) * limit,
		"size": limit,
		"sort": []interface{}{
			map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}},
		},
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"timestamp": map[string]interface{}{
					"gte": from.Format(time.RFC3339),
					"lte": to.Format(time.RFC3339),
				},
			},
		},
	}

	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(decisionIndex),
		r.esClient.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching decisions: %s", res.String())
	}

	var rmap map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&rmap); err != nil {
		return nil, err
	}

	hits := rmap["hits"].(map[string]interface{})["hits"].([]interface{})
	decisions := make([]Decision, len(hits))
	for i, hit := range hits {
		source := hit.(map[string]interface{})["_source"]
		data, _ := json.Marshal(source)
		json.Unmarshal(data, &decisions[i])
	}

	return decisions, nil
}
