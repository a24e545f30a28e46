package elastic_search

import (
	"context"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"net/http"
	"strings"
	"time"
)

type Index interface {
	GetClient() *elastic.Client

	InstallMappings() error

	AddIndexRequest(index string, entity entity.Entity, reqAction RequestAction)
	HasRequest(entity entity.Entity) bool
	AddRequest(index string, entity entity.Entity, reqType RequestType, reqAction RequestAction)
	GetEntitiesByIndex(index string) []entity.Entity
	GetRequests() []Request
	GetRequest(id string) *Request
	ClearRequests()

	Save(index string, entity entity.Entity)
	BatchPersist() bool
	Persist() int
}

type index struct {
	client    *elastic.Client
	cache     *cache.Cache
	refresh   string
	bulkCount int
}

type Request struct {
	Index  string
	Entity entity.Entity
	Type   RequestType
	Action RequestAction
}

type RequestType string

const (
	IndexRequest RequestType = "index"
)

type RequestAction string

const (
	MarketplaceAction RequestAction = "MarketplaceAction"
)

const saveAttempts int = 3

var persistBackoff = time.Second

const batchThreshold int = 250

func New(cfg config.ElasticSearchConfig) (Index, error) {
	client, err := newClient(cfg)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("ElasticSearch: Failed to create client")
		return nil, err
	}

	return NewIndex(client, cfg), nil
}

// NewIndex wraps an existing client. Requests are buffered until Persist or BatchPersist flushes them.
func NewIndex(client *elastic.Client, cfg config.ElasticSearchConfig) Index {
	bulkCount := cfg.BulkPersistCount
	if bulkCount <= 0 {
		bulkCount = 300
	}

	return index{client, cache.New(5*time.Minute, 10*time.Minute), cfg.Refresh, bulkCount}
}

func newClient(cfg config.ElasticSearchConfig) (*elastic.Client, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(strings.Join(cfg.Hosts, ",")),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheck(cfg.HealthCheck),
	}

	if cfg.Debug {
		opts = append(opts, elastic.SetTraceLog(ElasticLogger{}))
	}

	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}

	return elastic.NewClient(opts...)
}

func (i index) GetClient() *elastic.Client {
	return i.client
}

func (i index) InstallMappings() error {
	zap.L().Info("ElasticSearch: Install Mappings")

	for idx, mapping := range mappings {
		name := idx.Get()
		if err := i.createIndex(name, mapping); err != nil {
			zap.L().With(zap.Error(err), zap.String("index", name)).Error("ElasticSearch: Failed to create index")
			return err
		}
	}

	return nil
}

func (i index) createIndex(index string, mapping string) error {
	ctx := context.Background()
	client := i.client

	exists, err := client.IndexExists(index).Do(ctx)
	if err != nil {
		return err
	}

	if !exists {
		createIndex, err := client.CreateIndex(index).BodyString(mapping).Do(ctx)
		if err != nil {
			return err
		}

		if createIndex.Acknowledged {
			zap.S().Infof("ElasticSearch: Created index %s", index)
		}
	}

	return nil
}

func (i index) AddIndexRequest(index string, entity entity.Entity, reqAction RequestAction) {
	zap.L().With(
		zap.String("index", index),
		zap.String("slug", entity.Slug()),
		zap.String("action", string(reqAction)),
	).Debug("ElasticSearch: AddIndexRequest")

	i.AddRequest(index, entity, IndexRequest, reqAction)
}

func (i index) HasRequest(entity entity.Entity) bool {
	_, found := i.cache.Get(entity.Slug())

	return found
}

func (i index) AddRequest(index string, entity entity.Entity, reqType RequestType, reqAction RequestAction) {
	i.cache.Set(entity.Slug(), Request{index, entity, reqType, reqAction}, cache.NoExpiration)
}

func (i index) GetEntitiesByIndex(index string) []entity.Entity {
	entities := make([]entity.Entity, 0)
	for _, req := range i.GetRequests() {
		if req.Index == index {
			entities = append(entities, req.Entity)
		}
	}

	return entities
}

func (i index) GetRequests() []Request {
	requests := make([]Request, 0)

	for _, item := range i.cache.Items() {
		requests = append(requests, item.Object.(Request))
	}

	return requests
}

func (i index) GetRequest(id string) *Request {
	if item, found := i.cache.Get(id); found {
		req := item.(Request)
		return &req
	}

	return nil
}

func (i index) ClearRequests() {
	i.cache.Flush()
}

func (i index) Save(index string, entity entity.Entity) {
	i.save(index, entity, 1)
}

func (i index) save(index string, entity entity.Entity, attempt int) {
	if attempt > saveAttempts {
		zap.L().With(zap.String("index", index), zap.String("slug", entity.Slug())).
			Error("ElasticSearch: Failed to save entity, Too many attempts")
		return
	}

	_, err := i.client.Index().
		Index(index).
		Id(entity.Slug()).
		BodyJson(entity).
		Do(context.Background())

	if err != nil {
		zap.L().With(zap.Error(err), zap.String("index", index), zap.String("slug", entity.Slug())).
			Error("ElasticSearch: Failed to save entity")
		time.Sleep(persistBackoff)

		i.save(index, entity, attempt+1)
	}
}

func (i index) BatchPersist() bool {
	if len(i.GetRequests()) < batchThreshold {
		return false
	}

	actions := len(i.GetRequests())
	start := time.Now()
	i.Persist()

	zap.L().With(
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("actions", actions),
	).Info("ElasticSearch: Persisting data")

	return true
}

func (i index) Persist() int {
	requests := i.GetRequests()
	if len(requests) == 0 {
		return 0
	}

	bulk := i.client.Bulk()
	for _, r := range requests {
		bulk.Add(elastic.NewBulkIndexRequest().Index(r.Index).Id(r.Entity.Slug()).Doc(r.Entity))

		if bulk.NumberOfActions() >= i.bulkCount {
			i.persist(bulk)
			bulk = i.client.Bulk()
		}
	}

	if bulk.NumberOfActions() != 0 {
		i.persist(bulk)
	}
	i.flush()

	return len(requests)
}

func (i index) persist(bulk *elastic.BulkService) {
	actions := bulk.NumberOfActions()
	zap.S().Debugf("ElasticSearch: Persisting %d actions", actions)

	var response *elastic.BulkResponse
	var err error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		response, err = bulk.Refresh(i.refresh).Do(context.Background())
		if err == nil {
			break
		}

		wait := persistBackoff
		if elastic.IsStatusCode(err, http.StatusTooManyRequests) {
			zap.L().With(zap.Error(err), zap.Int("attempt", attempt)).Warn("ElasticSearch: 429 (Too Many Requests)")
			wait = time.Duration(attempt) * persistBackoff
		}
		if attempt < saveAttempts {
			time.Sleep(wait)
		}
	}
	if err != nil {
		zap.L().With(zap.Error(err), zap.Int("actions", actions)).Error("ElasticSearch: Failed to persist requests")
		return
	}

	for _, failed := range response.Failed() {
		zap.L().With(
			zap.Any("error", failed.Error),
			zap.String("index", failed.Index),
			zap.String("id", failed.Id),
		).Error("ElasticSearch: Failed to persist request. Retying...")

		if req := i.GetRequest(failed.Id); req != nil {
			i.Save(failed.Index, req.Entity)
		}
	}
}

func (i index) flush() {
	zap.L().Debug("ElasticSearch: Flushing ES cache")
	i.cache.Flush()
}
