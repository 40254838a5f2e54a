package pipeline

import "github.com/telefetch/telefetch/internal/core/engine"

// admit decides from probe metadata whether the implied artifact fits
// under the byte ceiling. Engines often cannot estimate size ahead of
// transfer, so missing data admits optimistically; the real ceiling is
// re-enforced on the transferred file. The boundary is inclusive: an
// estimate of exactly the ceiling is admitted.
func admit(meta *engine.Metadata, ceiling int64) bool {
	if meta == nil {
		return true
	}
	if int64(meta.Filesize) > ceiling || int64(meta.FilesizeApprox) > ceiling {
		return false
	}
	if total := meta.EstimatedStreamsSize(); total > 0 && total > ceiling {
		return false
	}
	return true
}
