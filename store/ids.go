package store

import (
	"strconv"

	"github.com/sidhant-sriv/gallery-api/models"
)

// NextID returns one more than the largest numeric id in items, or "1" for an empty
// collection. Ids that are not integers do not take part.
func NextID(items []models.Item) string {
	var max int64
	for _, it := range items {
		n, err := strconv.ParseInt(it.ID, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10)
}

// removeIDs drops the first record matching each id. Unknown ids are ignored and
// the survivors keep their relative order.
func removeIDs(items []models.Item, ids []string) ([]models.Item, int) {
	out := append([]models.Item(nil), items...)
	removed := 0
	for _, id := range ids {
		for i, it := range out {
			if it.ID == id {
				out = append(out[:i], out[i+1:]...)
				removed++
				break
			}
		}
	}
	return out, removed
}
