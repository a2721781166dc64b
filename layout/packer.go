// Package layout arranges submission photos into print rows of one or two images.
package layout

import (
	"sort"

	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
)

// DefaultTargetRatio is the combined aspect ratio of an ideal two-image row.
const DefaultTargetRatio = 1.9

// Row is one line of the photo layout, holding one or two photos.
type Row []model.Photo

// Pack lays out photos greedily: the widest remaining photo starts a row and takes the
// remaining photo that fills the row closest to target without overshooting it.
// Rows come out in pop order, widest first.
func Pack(photos []model.Photo, target float64) ([]Row, error) {
	if len(photos) == 0 {
		return nil, errors.Mark(errors.New("no photos to lay out"), model.ErrEmptyInput)
	}
	if target <= 0 {
		target = DefaultTargetRatio
	}

	imgs := make([]model.Photo, len(photos))
	copy(imgs, photos)
	for _, p := range imgs {
		if p.AspectRatio <= 0 {
			return nil, errors.Mark(errors.Newf("photo %s has aspect ratio %v", p.Hash, p.AspectRatio), model.ErrValidation)
		}
	}
	// hash breaks ties so the result does not depend on input order
	sort.SliceStable(imgs, func(i, j int) bool {
		if imgs[i].AspectRatio != imgs[j].AspectRatio {
			return imgs[i].AspectRatio < imgs[j].AspectRatio
		}
		return imgs[i].Hash < imgs[j].Hash
	})

	var rows []Row
	for len(imgs) > 0 {
		cur := imgs[len(imgs)-1]
		imgs = imgs[:len(imgs)-1]
		row := Row{cur}

		best := -1
		bestRest := 0.0
		for i, pair := range imgs {
			rest := target - cur.AspectRatio - pair.AspectRatio
			// a pair fits only when the remainder is non-negative as computed
			if rest < 0 {
				continue
			}
			if best == -1 || rest < bestRest {
				best, bestRest = i, rest
			}
		}
		if best >= 0 {
			row = append(row, imgs[best])
			imgs = append(imgs[:best], imgs[best+1:]...)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
