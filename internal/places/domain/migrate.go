package domain

import "github.com/google/uuid"

// Migrate upgrades a place read from storage to CurrentSchemaVersion.
//
// Version 1 documents carry only three axes and items without ids. The
// missing bathroom score reads as zero and items get fresh ids. Documents
// without a version are treated as version 1. The second return value reports
// whether anything changed.
func Migrate(p Place) (Place, bool) {
	if p.SchemaVersion >= CurrentSchemaVersion {
		return p, false
	}
	migrated := p.Clone()
	if migrated.ThingsToTry == nil {
		migrated.ThingsToTry = []string{}
	}
	if migrated.Review.Items == nil {
		migrated.Review.Items = []ReviewItem{}
	}
	for i := range migrated.Review.Items {
		if migrated.Review.Items[i].ID == "" {
			migrated.Review.Items[i].ID = uuid.NewString()
		}
		if migrated.Review.Items[i].Type == "" {
			migrated.Review.Items[i].Type = ItemAppetizer
		}
	}
	migrated.SchemaVersion = CurrentSchemaVersion
	return migrated, true
}
