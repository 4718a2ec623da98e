package hypotheticube

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hypotheticube/cloud"
	"github.com/spatialmodel/hypotheticube/internal/nctest"
	"github.com/spatialmodel/hypotheticube/ncfile"
	"github.com/spatialmodel/hypotheticube/ndarray"
)

const testVar = "air_temperature"

// fileServer serves a directory and counts requests by path.
type fileServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newFileServer(t *testing.T, dir string) *fileServer {
	s := &fileServer{hits: make(map[string]int)}
	fs := http.FileServer(http.Dir(dir))
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		fs.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *fileServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// writeFixtures writes a.nc, b.nc and c.nc to dir, each holding a 10x10
// grid whose values start at 0, 100 and 200 respectively.
func writeFixtures(t *testing.T, dir string) {
	t.Helper()
	for i, name := range []string{"a.nc", "b.nc", "c.nc"} {
		f := nctest.Grid(testVar, 10, 10, 450696, float64(100*i))
		if err := nctest.Write(filepath.Join(dir, name), f); err != nil {
			t.Fatal(err)
		}
	}
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

func testAssembler() *Assembler {
	log := quietLogger()
	return &Assembler{Resolver: &cloud.Resolver{Log: log}, Log: log}
}

// constArray is an in-memory LazyArray.
type constArray struct {
	shape []int
	value float64
	reads int
}

func (c *constArray) Shape() []int           { return c.shape }
func (c *constArray) DType() ncfile.DataType { return ncfile.Double }

func (c *constArray) Read(ctx context.Context, sel ...ndarray.Selector) (*ndarray.Array, error) {
	c.reads++
	h, err := ndarray.Resolve(c.shape, sel...)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, h.Len())
	for i := range vals {
		vals[i] = c.value
	}
	return ndarray.New(h.Shape(), vals), nil
}
