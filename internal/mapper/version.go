package mapper

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/entitymap/internal/domain"
	"github.com/heartmarshall/entitymap/internal/mapping"
	"github.com/heartmarshall/entitymap/internal/transfer"
)

type (
	versionOut = mapping.RuleSet[*domain.EntryVersion, *transfer.EntryVersion]
	versionIn  = mapping.RuleSet[*transfer.EntryVersion, *domain.EntryVersion]
)

func (m *Mapper) versionForward() versionOut {
	return mapping.Rules(
		mapping.Simple("version_id",
			func(v *domain.EntryVersion) *uuid.UUID { return idPtr(v.ID) },
			func(d *transfer.EntryVersion, id *uuid.UUID) { d.VersionID = id }),
		mapping.Simple("entry_id",
			func(v *domain.EntryVersion) *uuid.UUID { return idPtr(v.EntryID) },
			func(d *transfer.EntryVersion, id *uuid.UUID) { d.EntryID = id }),
		mapping.Simple("number",
			func(v *domain.EntryVersion) int { return v.Number },
			func(d *transfer.EntryVersion, n int) { d.Number = n }),
		mapping.Simple("status",
			func(v *domain.EntryVersion) string { return v.Status.String() },
			func(d *transfer.EntryVersion, s string) { d.Status = s }),
		mapping.Navigate("language",
			func(v *domain.EntryVersion) (string, error) { return m.languageCode(v.LanguageID) },
			func(d *transfer.EntryVersion, tag string) { d.Language = tag }),
		mapping.Simple("text",
			func(v *domain.EntryVersion) string { return v.Text },
			func(d *transfer.EntryVersion, s string) { d.Text = s }),
		mapping.Simple("notes",
			func(v *domain.EntryVersion) *string { return v.Notes },
			func(d *transfer.EntryVersion, s *string) { d.Notes = s }),
		mapping.Collection("senses",
			func(v *domain.EntryVersion) []*domain.Sense { return v.Senses },
			func(d *transfer.EntryVersion, out []*transfer.Sense) { d.Senses = out },
			m.senseOut(), mapping.RemoveObsolete),
		mapping.Collection("pronunciations",
			func(v *domain.EntryVersion) []*domain.Pronunciation { return v.Pronunciations },
			func(d *transfer.EntryVersion, out []*transfer.Pronunciation) { d.Pronunciations = out },
			m.pronunciationOut(), mapping.ReplaceForwardOnly),
	)
}

// versionReverseDefaults fills what a new version needs when the transfer
// object leaves it out.
func versionReverseDefaults() versionIn {
	return mapping.Rules(
		mapping.Simple("status",
			func(*transfer.EntryVersion) domain.VersionStatus { return domain.VersionStatusDraft },
			func(v *domain.EntryVersion, s domain.VersionStatus) {
				if v.Status == "" {
					v.Status = s
				}
			}),
	)
}

// versionReverse never writes the entry link or the number: both belong to
// the versioning manager.
func (m *Mapper) versionReverse() versionIn {
	return mapping.Rules(
		mapping.Navigate("status",
			func(d *transfer.EntryVersion) (domain.VersionStatus, error) { return status(d.Status) },
			func(v *domain.EntryVersion, s domain.VersionStatus) {
				if s != "" {
					v.Status = s
				}
			}),
		mapping.Navigate("language",
			func(d *transfer.EntryVersion) (uuid.UUID, error) { return m.languageID(d.Language) },
			func(v *domain.EntryVersion, id uuid.UUID) { v.LanguageID = id }),
		mapping.Simple("text",
			func(d *transfer.EntryVersion) string { return d.Text },
			func(v *domain.EntryVersion, s string) {
				v.Text = s
				v.TextNormalized = domain.NormalizeText(s)
			}),
		mapping.Simple("notes",
			func(d *transfer.EntryVersion) *string { return d.Notes },
			func(v *domain.EntryVersion, s *string) { v.Notes = s }),
		mapping.Collection("senses",
			func(d *transfer.EntryVersion) []*transfer.Sense { return d.Senses },
			func(v *domain.EntryVersion, live []*domain.Sense) { v.Senses = live },
			m.senseIn(), mapping.RemoveObsolete),
		mapping.Collection("pronunciations",
			func(d *transfer.EntryVersion) []*transfer.Pronunciation { return d.Pronunciations },
			func(v *domain.EntryVersion, live []*domain.Pronunciation) { v.Pronunciations = live },
			m.pronunciationIn(), mapping.ReplaceForwardOnly),
	)
}

func (m *Mapper) summaryForward() mapping.RuleSet[*domain.EntryVersion, *transfer.EntrySummary] {
	return mapping.Rules(
		mapping.Simple("entry_id",
			func(v *domain.EntryVersion) uuid.UUID { return v.EntryID },
			func(s *transfer.EntrySummary, id uuid.UUID) { s.EntryID = id }),
		mapping.Simple("version_id",
			func(v *domain.EntryVersion) uuid.UUID { return v.ID },
			func(s *transfer.EntrySummary, id uuid.UUID) { s.VersionID = id }),
		mapping.Simple("number",
			func(v *domain.EntryVersion) int { return v.Number },
			func(s *transfer.EntrySummary, n int) { s.Number = n }),
		mapping.Simple("status",
			func(v *domain.EntryVersion) string { return v.Status.String() },
			func(s *transfer.EntrySummary, st string) { s.Status = st }),
		mapping.Navigate("language",
			func(v *domain.EntryVersion) (string, error) { return m.languageCode(v.LanguageID) },
			func(s *transfer.EntrySummary, tag string) { s.Language = tag }),
		mapping.Simple("text",
			func(v *domain.EntryVersion) string { return v.Text },
			func(s *transfer.EntrySummary, t string) { s.Text = t }),
		mapping.Simple("sense_count",
			func(v *domain.EntryVersion) int { return len(v.Senses) },
			func(s *transfer.EntrySummary, n int) { s.SenseCount = n }),
	)
}
