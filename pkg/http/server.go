package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/fasthttp/router"
	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/datastore"
	"github.com/sigboard/sigboard/pkg/filetypes"
	"github.com/sigboard/sigboard/pkg/filetypes/filetype"
	"github.com/sigboard/sigboard/pkg/loggers"
	"github.com/sigboard/sigboard/pkg/runtime"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Port uint
}

type server struct {
	config        ServerConfig
	runtime       *runtime.Runtime
	subscriptions *subscriptionRegistry
	logger        *zap.Logger
}

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

func NewServer(rt *runtime.Runtime, port uint) *server {
	return &server{
		config: ServerConfig{
			Port: port,
		},
		runtime:       rt,
		subscriptions: newSubscriptionRegistry(),
		logger:        zaplog,
	}
}

// SetLogger sets the logger receiving fasthttp server messages
func (server *server) SetLogger(logger *zap.Logger) {
	server.logger = logger
}

func healthHandler(ctx *fasthttp.RequestCtx) {
	fmt.Fprintf(ctx, "ok")
}

func (server *server) apiGetDatasetsHandler(ctx *fasthttp.RequestCtx) {
	var data []*DatasetSummary
	_ = server.runtime.View(func(store *datastore.Store) error {
		data = make([]*DatasetSummary, 0, store.Len())
		for _, ds := range store.Datasets() {
			data = append(data, NewDatasetSummary(ds))
		}
		return nil
	})

	writeJson(ctx, data)
}

func (server *server) apiGetDatasetHandler(ctx *fasthttp.RequestCtx) {
	name := ctx.UserValue("dataset").(string)
	propertyKeys := server.runtime.Config().VisiblePropertyKeys()

	var data *DatasetDetail
	_ = server.runtime.View(func(store *datastore.Store) error {
		if ds, ok := store.Get(name); ok {
			data = NewDatasetDetail(ds, propertyKeys)
		}
		return nil
	})

	if data == nil {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		return
	}

	writeJson(ctx, data)
}

func (server *server) apiPostDatasetHandler(ctx *fasthttp.RequestCtx) {
	var descriptor dataset.Descriptor
	err := json.Unmarshal(ctx.Request.Body(), &descriptor)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	if descriptor.ImportMethodType == "" {
		descriptor.ImportMethodType = server.runtime.Config().DefaultFileType
	}

	ds, err := server.runtime.LoadDescriptorUnattended(descriptor)
	if err != nil {
		ctx.Response.SetStatusCode(loadErrorStatus(err))
		ctx.Response.SetBodyString(err.Error())
		return
	}

	var data *DatasetSummary
	_ = server.runtime.View(func(store *datastore.Store) error {
		data = NewDatasetSummary(ds)
		return nil
	})

	ctx.Response.SetStatusCode(http.StatusCreated)
	writeJson(ctx, data)
}

func (server *server) apiDeleteDatasetHandler(ctx *fasthttp.RequestCtx) {
	name := ctx.UserValue("dataset").(string)

	if !server.runtime.Remove(name) {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		return
	}

	ctx.Response.SetStatusCode(http.StatusNoContent)
}

func (server *server) apiPostRefreshHandler(ctx *fasthttp.RequestCtx) {
	var overwrite *bool
	if ctx.QueryArgs().Has("overwrite") {
		value, err := strconv.ParseBool(string(ctx.QueryArgs().Peek("overwrite")))
		if err != nil {
			ctx.Response.SetStatusCode(http.StatusBadRequest)
			ctx.Response.SetBodyString(fmt.Sprintf("invalid overwrite %s", ctx.QueryArgs().Peek("overwrite")))
			return
		}
		overwrite = &value
	}

	changed, err := server.runtime.Refresh(overwrite)
	if err != nil {
		zaplog.Sugar().Warn(err.Error())
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	if changed == nil {
		changed = []string{}
	}
	writeJson(ctx, changed)
}

func (server *server) apiGetSignalsHandler(ctx *fasthttp.RequestCtx) {
	pattern := string(ctx.QueryArgs().Peek("pattern"))
	if pattern == "" {
		pattern = datastore.Wildcard
	}
	propertyKeys := server.runtime.Config().VisiblePropertyKeys()

	var data []*SignalSummary
	_ = server.runtime.View(func(store *datastore.Store) error {
		matches := store.Match(pattern, nil)
		data = make([]*SignalSummary, len(matches))
		for i, s := range matches {
			data[i] = NewSignalSummary(s, propertyKeys)
		}
		return nil
	})

	writeJson(ctx, data)
}

func (server *server) apiEvaluateHandler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.QueryArgs().Peek("path"))
	if path == "" {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("path is required")
		return
	}

	var times []float64
	if timesArg := string(ctx.QueryArgs().Peek("times")); timesArg != "" {
		for _, field := range strings.Split(timesArg, ",") {
			t, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				ctx.Response.SetStatusCode(http.StatusBadRequest)
				ctx.Response.SetBodyString(fmt.Sprintf("invalid time %s", field))
				return
			}
			times = append(times, t)
		}
	}

	resolution := 0.0
	if resolutionArg := ctx.QueryArgs().Peek("resolution"); resolutionArg != nil {
		var err error
		resolution, err = strconv.ParseFloat(string(resolutionArg), 64)
		if err != nil || resolution <= 0 {
			ctx.Response.SetStatusCode(http.StatusBadRequest)
			ctx.Response.SetBodyString(fmt.Sprintf("invalid resolution %s", resolutionArg))
			return
		}
	}

	result, err := server.runtime.Evaluate(path, times, resolution)
	if err != nil {
		var notFoundErr *runtime.SignalNotFoundError
		if errors.As(err, &notFoundErr) {
			ctx.Response.SetStatusCode(http.StatusNotFound)
		} else {
			ctx.Response.SetStatusCode(http.StatusBadRequest)
		}
		ctx.Response.SetBodyString(err.Error())
		return
	}

	writeJson(ctx, &EvaluateResponse{
		Path:   result.Path,
		Type:   result.Type,
		Units:  result.Units,
		Time:   result.Times,
		Values: jsonValues(result.Values),
		Labels: result.Labels,
	})
}

func (server *server) apiPostSubscriptionHandler(ctx *fasthttp.RequestCtx) {
	var request SubscriptionRequest
	err := json.Unmarshal(ctx.Request.Body(), &request)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	if len(request.Patterns) == 0 {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("at least one pattern is required")
		return
	}

	subscription := NewSubscription(request.Patterns)
	server.runtime.Subscribe(subscription, subscription.Patterns())
	server.runtime.Metrics().SetSubscriptions(server.subscriptions.add(subscription))

	ctx.Response.SetStatusCode(http.StatusCreated)
	writeJson(ctx, map[string]string{"id": subscription.Id()})
}

func (server *server) apiGetSubscriptionHandler(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)
	subscription, ok := server.subscriptions.get(id)
	if !ok {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		return
	}

	var state *SubscriptionState
	_ = server.runtime.View(func(store *datastore.Store) error {
		state = subscription.State(store.MatchAll(subscription.Patterns(), nil))
		return nil
	})

	writeJson(ctx, state)
}

func (server *server) apiDeleteSubscriptionHandler(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)
	subscription, remaining, ok := server.subscriptions.remove(id)
	if !ok {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		return
	}

	server.runtime.Unsubscribe(subscription)
	server.runtime.Metrics().SetSubscriptions(remaining)

	ctx.Response.SetStatusCode(http.StatusNoContent)
}

func (server *server) apiGetWorkspaceHandler(ctx *fasthttp.RequestCtx) {
	writeJson(ctx, server.runtime.Workspace())
}

func (server *server) apiPutLayoutHandler(ctx *fasthttp.RequestCtx) {
	var layout interface{}
	err := json.Unmarshal(ctx.Request.Body(), &layout)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	server.runtime.SetLayout(layout)
	ctx.Response.SetStatusCode(http.StatusNoContent)
}

func (server *server) Router() *router.Router {
	r := router.New()
	r.GET("/health", healthHandler)
	r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(server.runtime.Metrics().Handler()))

	api := r.Group("/api/v0.1")
	{
		// Datasets
		api.GET("/datasets", server.apiGetDatasetsHandler)
		api.POST("/datasets", server.apiPostDatasetHandler)
		api.GET("/datasets/{dataset}", server.apiGetDatasetHandler)
		api.DELETE("/datasets/{dataset}", server.apiDeleteDatasetHandler)
		api.POST("/refresh", server.apiPostRefreshHandler)

		// Signals
		api.GET("/signals", server.apiGetSignalsHandler)
		api.GET("/signals/evaluate", server.apiEvaluateHandler)

		// Subscriptions
		api.POST("/subscriptions", server.apiPostSubscriptionHandler)
		api.GET("/subscriptions/{id}", server.apiGetSubscriptionHandler)
		api.DELETE("/subscriptions/{id}", server.apiDeleteSubscriptionHandler)

		// Workspace
		api.GET("/workspace", server.apiGetWorkspaceHandler)
		api.PUT("/workspace/layout", server.apiPutLayoutHandler)
	}

	return r
}

func (server *server) Start() error {
	serverLogger, err := zap.NewStdLogAt(server.logger, zap.DebugLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	fastServer := &fasthttp.Server{
		Handler: server.Router().Handler,
		Logger:  serverLogger,
	}

	go func() {
		log.Fatal(fastServer.ListenAndServe(fmt.Sprintf(":%d", server.config.Port)))
	}()

	return nil
}

func writeJson(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetBody(response)
}

func loadErrorStatus(err error) int {
	var unknownErr *filetypes.UnknownLoaderError
	var pathErr *filetype.InvalidFilePathError
	var ambiguousErr *filetype.AmbiguousTimeColumnError
	var missingErr *filetype.MissingTimeColumnError
	switch {
	case errors.As(err, &unknownErr), errors.As(err, &pathErr), errors.As(err, &ambiguousErr), errors.As(err, &missingErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
