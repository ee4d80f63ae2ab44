package detect

import "sort"

// IoU returns the intersection over union of two regions.
func IoU(a, b Region) float64 {
	left := max(a.Left, b.Left)
	top := max(a.Top, b.Top)
	right := min(a.Right, b.Right)
	bottom := min(a.Bottom, b.Bottom)

	if right <= left || bottom <= top {
		return 0 // No intersection
	}

	intersection := float64((right - left) * (bottom - top))
	union := float64(a.area()+b.area()) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

func (r Region) area() int {
	if r.Right <= r.Left || r.Bottom <= r.Top {
		return 0
	}
	return (r.Right - r.Left) * (r.Bottom - r.Top)
}

// Suppress drops detections that overlap a higher-scoring one by more than
// threshold IoU. The result is ordered by descending confidence.
func Suppress(dets []Detection, threshold float64) []Detection {
	if len(dets) < 2 {
		return dets
	}
	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	for _, d := range sorted {
		overlaps := false
		for _, k := range kept {
			if IoU(d.Region, k.Region) > threshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, d)
		}
	}
	return kept
}
