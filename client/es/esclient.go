package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/elastic/go-elasticsearch/v7/estransport"
	"github.com/sirupsen/logrus"
)

var (
	SearchFunc      = Search
	CountFunc       = Count
	IndexFunc       = Index
	EnsureIndexFunc = EnsureIndex
)

var ErrClientNotReady = errors.New("elasticsearch client is not configured")

type H map[string]interface{}

type ESSearchResult struct {
	Took    int            `json:"took"`
	TimeOut bool           `json:"timed_out"`
	Shards  ESSearchShards `json:"_shards"`
	Hits    ESSearchHits   `json:"hits"`
}
type ESSearchShards struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}
type ESSearchHits struct {
	Total    ESSearchHitsTotal `json:"total"`
	MaxScore float64           `json:"max_score"`
	Hits     []ESSearchHit     `json:"hits"`
}
type ESSearchHitsTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}
type ESSearchHit struct {
	Index string `json:"_index"`
	Id    string `json:"_id"`

	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
	Sort   []interface{}   `json:"sort"`
}

type ESCountResult struct {
	Count  int            `json:"count"`
	Shards ESSearchShards `json:"_shards"`
}

// ActiveESClient is nil unless ELASTICSEARCH_URL is configured.
var ActiveESClient *elasticsearch.Client

// CreateClientFromEnv builds a client for ELASTICSEARCH_URL (comma separated addresses).
func CreateClientFromEnv() (*elasticsearch.Client, error) {
	debug := os.Getenv("GIN_MODE") == "debug"
	conf := elasticsearch.Config{
		Logger:    &estransport.TextLogger{Output: os.Stdout, EnableRequestBody: debug, EnableResponseBody: debug},
		Transport: &TracingTransport{Transport: http.DefaultTransport},
	}
	if urls := os.Getenv("ELASTICSEARCH_URL"); urls != "" {
		conf.Addresses = strings.Split(urls, ",")
	}
	client, err := elasticsearch.NewClient(conf)
	if err != nil {
		return nil, err
	}

	ActiveESClient = client
	return client, nil
}

func encode(body interface{}) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	return &buf, nil
}

func responseError(res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("error response status %s: %s", res.Status(), string(body))
}

// EnsureIndex creates index with mapping unless it exists already.
func EnsureIndex(ctx context.Context, index string, mapping interface{}) error {
	if ActiveESClient == nil {
		return ErrClientNotReady
	}
	exists, err := ActiveESClient.Indices.Exists([]string{index}, ActiveESClient.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	body, err := encode(mapping)
	if err != nil {
		return err
	}
	res, err := ActiveESClient.Indices.Create(index,
		ActiveESClient.Indices.Create.WithContext(ctx),
		ActiveESClient.Indices.Create.WithBody(body))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res)
	}
	logrus.Infof("index %s created", index)
	return nil
}

func Index(ctx context.Context, index string, id string, doc interface{}) error {
	if ActiveESClient == nil {
		return ErrClientNotReady
	}
	body, err := encode(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       body,
		Refresh:    "true",
	}
	res, err := req.Do(ctx, ActiveESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(res)
	}
	logrus.Debugln(res.String())
	return nil
}

func Search(ctx context.Context, index string, query interface{}) (*ESSearchResult, error) {
	if ActiveESClient == nil {
		return nil, ErrClientNotReady
	}
	body, err := encode(query)
	if err != nil {
		return nil, err
	}

	res, err := ActiveESClient.Search(
		ActiveESClient.Search.WithContext(ctx),
		ActiveESClient.Search.WithIndex(index),
		ActiveESClient.Search.WithBody(body),
		ActiveESClient.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError(res)
	}

	r := ESSearchResult{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Count runs query (a {"query": ...} body) through the _count API.
func Count(ctx context.Context, index string, query interface{}) (int, error) {
	if ActiveESClient == nil {
		return 0, ErrClientNotReady
	}
	body, err := encode(query)
	if err != nil {
		return 0, err
	}

	res, err := ActiveESClient.Count(
		ActiveESClient.Count.WithContext(ctx),
		ActiveESClient.Count.WithIndex(index),
		ActiveESClient.Count.WithBody(body),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, responseError(res)
	}
	r := ESCountResult{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, err
	}
	return r.Count, nil
}
