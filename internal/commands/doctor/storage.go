package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hay-kot/calcam/internal/core/history"
	"github.com/hay-kot/calcam/internal/core/kv"
)

// quotaWarnRatio is the share of the quota at which usage is reported.
const quotaWarnRatio = 0.9

// StorageCheck inspects the local storage file and the persisted history.
type StorageCheck struct {
	storage    kv.Store
	historyKey string
	quota      int
	fix        bool
}

// NewStorageCheck creates a new storage check.
// If fix is true, a history blob that cannot be decoded is deleted.
func NewStorageCheck(storage kv.Store, historyKey string, quota int, fix bool) *StorageCheck {
	return &StorageCheck{
		storage:    storage,
		historyKey: historyKey,
		quota:      quota,
		fix:        fix,
	}
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	entries, err := c.storage.List(ctx, "")
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Read storage",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, c.usageItem(entries))
	result.Items = append(result.Items, c.historyItems(ctx)...)

	return result
}

func (c *StorageCheck) usageItem(entries []kv.Entry) CheckItem {
	var used int
	for _, e := range entries {
		used += len(e.Key) + len(e.Value)
	}

	if c.quota <= 0 {
		return CheckItem{
			Label:  "Usage",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d bytes in %d key(s), no quota", used, len(entries)),
		}
	}

	item := CheckItem{
		Label:  "Usage",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d of %d bytes", used, c.quota),
	}
	if float64(used) >= float64(c.quota)*quotaWarnRatio {
		item.Status = StatusWarn
		item.Detail += "; new meals may only be kept for the current session"
	}
	return item
}

func (c *StorageCheck) historyItems(ctx context.Context) []CheckItem {
	entry, err := c.storage.Get(ctx, c.historyKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return []CheckItem{{Label: "History", Status: StatusPass, Detail: "no meals logged yet"}}
	}
	if err != nil {
		return []CheckItem{{Label: "History", Status: StatusFail, Detail: err.Error()}}
	}

	var persisted []history.Entry
	if err := json.Unmarshal([]byte(entry.Value), &persisted); err != nil {
		if c.fix {
			if delErr := c.storage.Delete(ctx, c.historyKey); delErr != nil {
				return []CheckItem{{Label: "History", Status: StatusFail, Detail: "remove corrupt history: " + delErr.Error()}}
			}
			return []CheckItem{{Label: "History", Status: StatusPass, Detail: "removed corrupt history"}}
		}
		return []CheckItem{{
			Label:   "History",
			Status:  StatusFail,
			Detail:  fmt.Sprintf("stored history cannot be decoded (%v); it is ignored until the next meal is saved", err),
			Fixable: true,
		}}
	}

	items := []CheckItem{{
		Label:  "History",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d meal(s) stored", len(persisted)),
	}}

	var withImages int
	for _, e := range persisted {
		if e.UploadedImage != history.Placeholder {
			withImages++
		}
	}
	if withImages > 0 {
		items = append(items, CheckItem{
			Label:  "Images",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%d stored meal(s) carry image data; it is replaced the next time a meal is saved", withImages),
		})
	}

	return items
}
