// Package dataset provides tabular ingestion and cleanliness auditing on top
// of the gota dataframe library.
//
// A Dataset wraps a parsed dataframe and names one column as the label;
// every other numeric column is a feature unless explicitly ignored. Feature
// ordering follows CSV column order, so matrices built from the same file are
// reproducible.
package dataset

import (
	"bufio"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	harlearnErrors "github.com/sigmotion/harlearn/pkg/errors"
	"github.com/sigmotion/harlearn/pkg/log"
)

// DefaultLabelColumn is the label column name used when none is configured.
const DefaultLabelColumn = "label"

// Dataset is an immutable view over a parsed dataframe: an ordered set of
// numeric feature columns plus one string label column. Ignored columns stay
// in the frame as passthrough (e.g. a subject identifier) but never reach the
// feature matrix.
type Dataset struct {
	df          dataframe.DataFrame
	labelCol    string
	featureCols []string
	ignoreCols  []string
}

type config struct {
	labelColumn   string
	ignoreColumns []string
	dropNA        bool
}

// Option configures dataset reading.
type Option func(*config)

// WithLabelColumn names the label column. Default is "label".
func WithLabelColumn(name string) Option {
	return func(c *config) { c.labelColumn = name }
}

// WithIgnoreColumns excludes columns from the feature matrix. They remain in
// the underlying frame as passthrough columns.
func WithIgnoreColumns(names ...string) Option {
	return func(c *config) { c.ignoreColumns = append(c.ignoreColumns, names...) }
}

// WithDropNA removes rows containing missing cells at read time instead of
// leaving them for the audit to report.
func WithDropNA() Option {
	return func(c *config) { c.dropNA = true }
}

// ReadCSV parses a CSV file into a Dataset. Parsing and type inference are
// delegated to gota.
func ReadCSV(path string, opts ...Option) (ds *Dataset, err error) {
	defer harlearnErrors.Recover(&err, "dataset.ReadCSV")

	file, err := os.Open(path)
	if err != nil {
		return nil, harlearnErrors.Wrapf(err, "dataset.ReadCSV: opening %s", path)
	}
	defer file.Close()

	ds, err = Read(bufio.NewReader(file), opts...)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("dataset").Info("Dataset loaded",
		log.SourceKey, path,
		log.SamplesKey, ds.NumRows(),
		log.FeaturesKey, ds.NumFeatures(),
	)
	return ds, nil
}

// Read parses CSV content from r into a Dataset.
func Read(r io.Reader, opts ...Option) (*Dataset, error) {
	df := dataframe.ReadCSV(r, dataframe.HasHeader(true))
	if df.Error() != nil {
		return nil, harlearnErrors.Wrap(df.Error(), "dataset.Read: parsing CSV")
	}
	return New(df, opts...)
}

// New builds a Dataset from an already parsed dataframe.
func New(df dataframe.DataFrame, opts ...Option) (*Dataset, error) {
	cfg := config{labelColumn: DefaultLabelColumn}
	for _, opt := range opts {
		opt(&cfg)
	}

	if df.Nrow() == 0 {
		return nil, harlearnErrors.Wrap(harlearnErrors.ErrEmptyData, "dataset.New")
	}

	names := df.Names()
	if !containsColumn(names, cfg.labelColumn) {
		return nil, harlearnErrors.NewValueError("dataset.New",
			"label column \""+cfg.labelColumn+"\" not found in CSV header")
	}
	for _, ignored := range cfg.ignoreColumns {
		if !containsColumn(names, ignored) {
			return nil, harlearnErrors.NewValueError("dataset.New",
				"ignored column \""+ignored+"\" not found in CSV header")
		}
	}

	featureCols := make([]string, 0, len(names)-1)
	for _, name := range names {
		if name == cfg.labelColumn || containsColumn(cfg.ignoreColumns, name) {
			continue
		}
		featureCols = append(featureCols, name)
	}
	if len(featureCols) == 0 {
		return nil, harlearnErrors.NewValueError("dataset.New", "no feature columns remain")
	}

	// Feature columns must parse as numbers; the label column may not.
	for _, name := range featureCols {
		switch df.Col(name).Type() {
		case series.Int, series.Float:
		default:
			return nil, harlearnErrors.NewValueError("dataset.New",
				"feature column \""+name+"\" is not numeric")
		}
	}

	if cfg.dropNA {
		keep := cleanRowIndices(df)
		if len(keep) == 0 {
			return nil, harlearnErrors.Wrap(harlearnErrors.ErrEmptyData,
				"dataset.New: all rows removed by WithDropNA")
		}
		if len(keep) < df.Nrow() {
			df = df.Subset(keep)
			if df.Error() != nil {
				return nil, harlearnErrors.Wrap(df.Error(), "dataset.New: dropping missing rows")
			}
		}
	}

	return &Dataset{
		df:          df,
		labelCol:    cfg.labelColumn,
		featureCols: featureCols,
		ignoreCols:  cfg.ignoreColumns,
	}, nil
}

// cleanRowIndices returns the indices of rows with no missing cell in any
// column.
func cleanRowIndices(df dataframe.DataFrame) []int {
	rows := df.Nrow()
	dirty := make([]bool, rows)
	for _, name := range df.Names() {
		for i, isNaN := range df.Col(name).IsNaN() {
			if isNaN {
				dirty[i] = true
			}
		}
	}
	keep := make([]int, 0, rows)
	for i, d := range dirty {
		if !d {
			keep = append(keep, i)
		}
	}
	return keep
}

// NumRows returns the number of samples.
func (d *Dataset) NumRows() int {
	return d.df.Nrow()
}

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int {
	return len(d.featureCols)
}

// FeatureNames returns the feature column names in CSV order.
func (d *Dataset) FeatureNames() []string {
	out := make([]string, len(d.featureCols))
	copy(out, d.featureCols)
	return out
}

// LabelColumn returns the configured label column name.
func (d *Dataset) LabelColumn() string {
	return d.labelCol
}

// Frame returns the underlying dataframe.
func (d *Dataset) Frame() dataframe.DataFrame {
	return d.df
}

// Matrix builds the samples × features matrix from the feature columns.
// Missing cells surface as NaN and are caught by the assembler or the audit.
func (d *Dataset) Matrix() *mat.Dense {
	rows := d.df.Nrow()
	m := mat.NewDense(rows, len(d.featureCols), nil)
	for j, name := range d.featureCols {
		for i, v := range d.df.Col(name).Float() {
			m.Set(i, j, v)
		}
	}
	return m
}

// Labels returns the label column as strings.
func (d *Dataset) Labels() []string {
	return d.df.Col(d.labelCol).Records()
}

// Column returns a passthrough column as strings, e.g. the HAR subject id.
func (d *Dataset) Column(name string) ([]string, error) {
	if !containsColumn(d.df.Names(), name) {
		return nil, harlearnErrors.NewValueError("dataset.Column",
			"column \""+name+"\" not found")
	}
	return d.df.Col(name).Records(), nil
}

// CheckShape validates the feature column count.
func (d *Dataset) CheckShape(wantFeatures int) error {
	if got := d.NumFeatures(); got != wantFeatures {
		return harlearnErrors.NewDimensionError("dataset.CheckShape", wantFeatures, got, 1)
	}
	return nil
}

// Subset returns a new Dataset restricted to the given row indices. The
// receiver is unchanged.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	sub := d.df.Subset(indices)
	if sub.Error() != nil {
		return nil, harlearnErrors.Wrap(sub.Error(), "dataset.Subset")
	}
	return &Dataset{
		df:          sub,
		labelCol:    d.labelCol,
		featureCols: d.featureCols,
		ignoreCols:  d.ignoreCols,
	}, nil
}

// Features builds a samples x features matrix straight from a parsed frame,
// skipping the named columns when present. Unlike New it does not require a
// label column, which suits scoring data that ships without one.
func Features(df dataframe.DataFrame, skip ...string) (*mat.Dense, []string, error) {
	if df.Error() != nil {
		return nil, nil, harlearnErrors.Wrap(df.Error(), "dataset.Features")
	}
	if df.Nrow() == 0 {
		return nil, nil, harlearnErrors.Wrap(harlearnErrors.ErrEmptyData, "dataset.Features")
	}

	featureCols := make([]string, 0, len(df.Names()))
	for _, name := range df.Names() {
		if containsColumn(skip, name) {
			continue
		}
		featureCols = append(featureCols, name)
	}
	if len(featureCols) == 0 {
		return nil, nil, harlearnErrors.NewValueError("dataset.Features", "no feature columns remain")
	}
	for _, name := range featureCols {
		switch df.Col(name).Type() {
		case series.Int, series.Float:
		default:
			return nil, nil, harlearnErrors.NewValueError("dataset.Features",
				"feature column \""+name+"\" is not numeric")
		}
	}

	m := mat.NewDense(df.Nrow(), len(featureCols), nil)
	for j, name := range featureCols {
		for i, v := range df.Col(name).Float() {
			m.Set(i, j, v)
		}
	}
	return m, featureCols, nil
}

func containsColumn(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
