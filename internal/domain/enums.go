package domain

// VersionStatus is the lifecycle state of an entry version.
type VersionStatus string

const (
	VersionStatusDraft     VersionStatus = "DRAFT"
	VersionStatusPublished VersionStatus = "PUBLISHED"
	VersionStatusArchived  VersionStatus = "ARCHIVED"
)

func (s VersionStatus) String() string { return string(s) }

func (s VersionStatus) IsValid() bool {
	switch s {
	case VersionStatusDraft, VersionStatusPublished, VersionStatusArchived:
		return true
	}
	return false
}

// CEFRLevel is a Common European Framework proficiency level.
type CEFRLevel string

const (
	CEFRLevelA1 CEFRLevel = "A1"
	CEFRLevelA2 CEFRLevel = "A2"
	CEFRLevelB1 CEFRLevel = "B1"
	CEFRLevelB2 CEFRLevel = "B2"
	CEFRLevelC1 CEFRLevel = "C1"
	CEFRLevelC2 CEFRLevel = "C2"
)

func (l CEFRLevel) String() string { return string(l) }

func (l CEFRLevel) IsValid() bool {
	switch l {
	case CEFRLevelA1, CEFRLevelA2, CEFRLevelB1, CEFRLevelB2, CEFRLevelC1, CEFRLevelC2:
		return true
	}
	return false
}
