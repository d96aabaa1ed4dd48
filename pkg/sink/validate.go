package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dtnitsch/bac-archiver/models"
)

// Validating rejects PDFs that pdfcpu cannot read before they reach the
// wrapped sink. Other file types pass through.
type Validating struct {
	next Sink
	conf *model.Configuration
}

func NewValidating(next Sink) *Validating {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Validating{next: next, conf: conf}
}

func (v *Validating) Put(ctx context.Context, dir, filename string, data []byte) (Outcome, error) {
	if strings.EqualFold(path.Ext(filename), ".pdf") {
		if err := v.Check(data); err != nil {
			return Written, &models.SinkFailure{Key: Key(dir, filename), Err: err}
		}
	}
	return v.next.Put(ctx, dir, filename, data)
}

// Check validates data as a PDF document.
func (v *Validating) Check(data []byte) error {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), v.conf)
	if err != nil {
		return fmt.Errorf("pdfcpu validate: %w", err)
	}
	if ctx.PageCount == 0 {
		return fmt.Errorf("pdfcpu validate: document has no pages")
	}
	return nil
}
