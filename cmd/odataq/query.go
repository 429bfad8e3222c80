package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	odata "github.com/nlstn/go-odata-engine"
	"github.com/nlstn/go-odata-engine/internal/config"
	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/observability"
	"github.com/nlstn/go-odata-engine/internal/store"
)

type queryFlags struct {
	where     []string
	orderBy   string
	search    string
	skip      int
	skipSet   bool
	top       int
	topSet    bool
	skipToken string
	uri       string
	pageSize  int
	prefer    string
	timing    bool
}

func newQueryCmd() *cobra.Command {
	flags := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query <entity-set>",
		Short: "Load an entity set and apply query options",
		Example: `  odataq query People --where City=Berlin --orderby "Name desc" --top 5
  odataq query People --search "alice OR bob" --skiptoken 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags.skipSet = cmd.Flags().Changed("skip")
			flags.topSet = cmd.Flags().Changed("top")
			return runQuery(cmd.Context(), cfg, args[0], flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringArrayVar(&flags.where, "where", nil, "Equality filter Property=value; repeat to combine with 'and'")
	cmd.Flags().StringVar(&flags.orderBy, "orderby", "", "Comma separated property paths, each optionally followed by asc or desc")
	cmd.Flags().StringVar(&flags.search, "search", "", "$search expression")
	cmd.Flags().IntVar(&flags.skip, "skip", 0, "$skip count")
	cmd.Flags().IntVar(&flags.top, "top", 0, "$top count")
	cmd.Flags().StringVar(&flags.skipToken, "skiptoken", "", "Server-driven paging token")
	cmd.Flags().StringVar(&flags.uri, "uri", "", "Request URI next links are derived from (default: built from the options)")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "Server-side page size (default: from configuration)")
	cmd.Flags().StringVar(&flags.prefer, "prefer", "", "Prefer header value, e.g. odata.maxpagesize=5")
	cmd.Flags().BoolVar(&flags.timing, "timing", false, "Print a Server-Timing header to stderr")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if dialect, _ := cmd.Flags().GetString("dialect"); dialect != "" {
		cfg.Database.Dialect = dialect
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runQuery(ctx context.Context, cfg *config.Config, setName string, flags *queryFlags, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	setCfg, ok := cfg.EntitySet(setName)
	if !ok {
		return fmt.Errorf("entity set %q is not configured", setName)
	}
	model, err := cfg.Model()
	if err != nil {
		return err
	}
	set, _ := model.EntitySet(setName)

	logger := newLogger(cfg.Observability.LogLevel, errOut)
	pageSize := cfg.Engine.PageSize
	if flags.pageSize > 0 {
		pageSize = flags.pageSize
	}
	engine := odata.NewEngine(
		odata.WithPageSize(pageSize),
		odata.WithLogger(logger),
		odata.WithModel(model),
		odata.WithObservability(odata.ObservabilityConfig{
			ServiceName:             cfg.Observability.ServiceName,
			ServiceVersion:          version,
			EnableDetailedDBTracing: cfg.Observability.DetailedDB,
			EnableServerTiming:      flags.timing || cfg.Observability.ServerTiming,
		}),
	)

	st, err := store.Open(cfg.Database.Dialect, cfg.Database.DSN,
		store.WithObservability(engine.Observability()),
		store.WithLogger(logger),
		store.WithBaseURI(cfg.Engine.BaseURI),
	)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, header := observability.NewServerTimingContext(ctx)
	ctx = observability.WithDBTimeAccumulator(ctx)

	columns := make(map[string]string, len(setCfg.Properties))
	for _, p := range setCfg.Properties {
		columns[p.Name] = p.ColumnName()
	}
	coll, err := st.Load(ctx, store.Source{
		EntitySet: setName,
		Table:     setCfg.TableName(),
		Type:      set.Type,
		Columns:   columns,
	})
	if err != nil {
		return err
	}

	opts, err := buildOptions(set.Type, flags)
	if err != nil {
		return err
	}
	rawURI := flags.uri
	if rawURI == "" {
		rawURI = buildURI(cfg.Engine.BaseURI, setName, flags)
	}

	if err := engine.Apply(ctx, coll, odata.Request{
		EntitySet:  setName,
		EntityType: set.Type,
		RawURI:     rawURI,
		Prefer:     flags.prefer,
		Options:    opts,
	}); err != nil {
		return fmt.Errorf("query failed (HTTP %d): %w", odata.MapErrorToHTTPStatus(err), err)
	}

	if applied := engine.PreferenceApplied(flags.prefer); applied != "" {
		fmt.Fprintf(errOut, "Preference-Applied: %s\n", applied)
	}

	if flags.timing {
		db := header.NewMetric("db")
		db.Duration = observability.DBTimeAccumulatorFromContext(ctx).Duration()
		fmt.Fprintf(errOut, "Server-Timing: %s\n", header.String())
	}
	return render(out, cfg.Engine.BaseURI, setName, coll)
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func buildOptions(entityType *edm.EntityType, flags *queryFlags) (odata.QueryOptions, error) {
	var opts odata.QueryOptions

	for _, clause := range flags.where {
		expr, err := parseWhere(entityType, clause)
		if err != nil {
			return opts, err
		}
		if opts.Filter == nil {
			opts.Filter = expr
		} else {
			opts.Filter = odata.Binary(opts.Filter, odata.OpAnd, expr)
		}
	}

	orderBy, err := parseOrderBy(flags.orderBy)
	if err != nil {
		return opts, err
	}
	opts.OrderBy = orderBy

	if flags.search != "" {
		opts.Search = odata.ParseSearch(flags.search)
	}
	if flags.skipSet {
		skip := flags.skip
		opts.Skip = &skip
	}
	if flags.topSet {
		top := flags.top
		opts.Top = &top
	}
	if flags.skipToken != "" {
		token := flags.skipToken
		opts.SkipToken = &token
	}
	return opts, nil
}

// parseWhere turns "Property=value" into an equality expression. The value
// is converted to the declared kind of the property; "null" is the null literal.
func parseWhere(entityType *edm.EntityType, clause string) (odata.ASTNode, error) {
	name, raw, ok := strings.Cut(clause, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return nil, fmt.Errorf("invalid --where %q: expected Property=value", clause)
	}
	prop, ok := entityType.Property(name)
	if !ok {
		return nil, fmt.Errorf("invalid --where %q: unknown property %q", clause, name)
	}
	if raw == "null" {
		return odata.Binary(odata.Member(name), odata.OpEqual, odata.Literal(prop.Type, nil)), nil
	}
	value, err := data.NewPrimitive(prop.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --where %q: %w", clause, err)
	}
	return odata.Binary(odata.Member(name), odata.OpEqual, odata.Literal(prop.Type, value.Raw())), nil
}

func parseOrderBy(spec string) ([]odata.OrderByItem, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	var items []odata.OrderByItem
	for _, part := range strings.Split(spec, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 || len(fields) > 2 {
			return nil, fmt.Errorf("invalid --orderby item %q", part)
		}
		item := odata.OrderByItem{Expression: odata.Member(strings.Split(fields[0], "/")...)}
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				item.Descending = true
			default:
				return nil, fmt.Errorf("invalid --orderby direction %q", fields[1])
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func buildURI(base, setName string, flags *queryFlags) string {
	var query []string
	if flags.orderBy != "" {
		query = append(query, "$orderby="+url.QueryEscape(flags.orderBy))
	}
	if flags.search != "" {
		query = append(query, "$search="+url.QueryEscape(flags.search))
	}
	if flags.skipSet {
		query = append(query, "$skip="+strconv.Itoa(flags.skip))
	}
	if flags.topSet {
		query = append(query, "$top="+strconv.Itoa(flags.top))
	}
	if flags.skipToken != "" {
		query = append(query, "$skiptoken="+url.QueryEscape(flags.skipToken))
	}

	uri := strings.TrimRight(base, "/") + "/" + setName
	if len(query) > 0 {
		uri += "?" + strings.Join(query, "&")
	}
	return uri
}

type payload struct {
	Context  string                   `json:"@odata.context"`
	Value    []map[string]interface{} `json:"value"`
	NextLink string                   `json:"@odata.nextLink,omitempty"`
}

func render(w io.Writer, base, setName string, coll *odata.EntityCollection) error {
	p := payload{
		Context: strings.TrimRight(base, "/") + "/$metadata#" + setName,
		Value:   make([]map[string]interface{}, 0, coll.Len()),
	}
	if coll.Next != nil {
		p.NextLink = coll.Next.String()
	}
	for _, entity := range coll.Entities {
		row := make(map[string]interface{}, len(entity.Properties()))
		if entity.ID != nil {
			row["@odata.id"] = entity.ID.String()
		}
		if entity.ETag != "" {
			row["@odata.etag"] = entity.ETag
		}
		for _, prop := range entity.Properties() {
			row[prop.Name] = jsonValue(prop.PrimitiveValue())
		}
		p.Value = append(p.Value, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func jsonValue(v *data.PrimitiveValue) interface{} {
	if v == nil || v.IsNull() {
		return nil
	}
	switch raw := v.Raw().(type) {
	case bool, int16, int32, int64, int8, uint8, float32, float64:
		return raw
	default:
		return edm.FormatValue(v.Type, raw)
	}
}
