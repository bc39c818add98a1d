package imports

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	dcconfig "github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	dcimage "github.com/JaimeStill/document-context/pkg/image"
)

// Rasterizer renders pages 1..count of the PDF at path to encoded images,
// returned in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, count, dpi int) ([][]byte, error)
}

type magick struct{}

// NewRasterizer returns the ImageMagick-backed rasterizer.
func NewRasterizer() Rasterizer {
	return magick{}
}

type renderTask struct {
	pageNum int
	data    []byte
	err     error
}

func (magick) Rasterize(ctx context.Context, path string, count, dpi int) ([][]byte, error) {
	tasks := make(chan int, count)
	results := make(chan renderTask, count)

	var wg sync.WaitGroup
	for range max(min(runtime.NumCPU(), count), 1) {
		wg.Go(func() {
			renderWorker(ctx, path, dpi, tasks, results)
		})
	}

	for n := 1; n <= count; n++ {
		tasks <- n
	}
	close(tasks)

	go func() {
		wg.Wait()
		close(results)
	}()

	pages := make([][]byte, count)
	var firstErr error
	for task := range results {
		if task.err != nil {
			if firstErr == nil {
				firstErr = task.err
			}
			continue
		}
		pages[task.pageNum-1] = task.data
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return pages, nil
}

// renderWorker opens its own handle on the document and renderer; neither
// is shared across goroutines.
func renderWorker(ctx context.Context, path string, dpi int, tasks <-chan int, results chan<- renderTask) {
	fail := func(err error) {
		for pageNum := range tasks {
			results <- renderTask{pageNum: pageNum, err: fmt.Errorf("%w: %v", ErrRenderFailed, err)}
		}
	}

	doc, err := document.Open(path, "application/pdf")
	if err != nil {
		fail(err)
		return
	}
	defer doc.Close()

	renderer, err := dcimage.NewImageMagickRenderer(dcconfig.ImageConfig{
		Format:  string(document.PNG),
		DPI:     dpi,
		Options: make(map[string]any),
	})
	if err != nil {
		fail(err)
		return
	}

	for pageNum := range tasks {
		if err := ctx.Err(); err != nil {
			results <- renderTask{pageNum: pageNum, err: err}
			continue
		}

		page, err := doc.ExtractPage(pageNum)
		if err != nil {
			results <- renderTask{pageNum: pageNum, err: fmt.Errorf("%w: page %d: %v", ErrRenderFailed, pageNum, err)}
			continue
		}

		data, err := page.ToImage(renderer, nil)
		if err != nil {
			results <- renderTask{pageNum: pageNum, err: fmt.Errorf("%w: page %d: %v", ErrRenderFailed, pageNum, err)}
			continue
		}
		results <- renderTask{pageNum: pageNum, data: data}
	}
}

// spool writes data to a temporary file for renderers that read from disk.
func spool(data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "import-*.pdf")
	if err != nil {
		return "", nil, err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, err
	}

	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
