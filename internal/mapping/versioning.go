package mapping

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// versioning links a version row to its root.
type versioning[T any] struct {
	newRoot func(version T) Entity

	rootID uuid.UUID
	number int
}

// link runs after the upsert resolved the target and before any rule is
// applied. A created version gets a fresh root staged ahead of it; a matched
// version keeps the root it already has.
func (v *versioning[T]) link(x *exec, target T, res Resolution) error {
	ver, ok := any(target).(Versioned)
	if !ok {
		return configErrorf("versioning: target %T does not implement mapping.Versioned", target)
	}

	switch res {
	case Created:
		if v.newRoot == nil {
			return configErrorf("versioning: no root constructor")
		}
		root := v.newRoot(target)
		if root == nil {
			return configErrorf("versioning: root constructor returned nil")
		}
		root.SetEntityID(uuid.New())
		if root.EntityID() == ver.EntityID() {
			return configErrorf("versioning: root and version share id %s", root.EntityID())
		}
		x.plan.add(ActionInsert, root)
		ver.SetRootID(root.EntityID())
		ver.SetVersionNumber(1)

		x.log.DebugContext(x.ctx, "version linked to new root",
			slog.String("kind", ver.EntityKind()),
			slog.String("version_id", ver.EntityID().String()),
			slog.String("root_id", root.EntityID().String()),
		)
	case Matched:
		if ver.RootID() == uuid.Nil {
			return configErrorf("versioning: %s %s has no root", ver.EntityKind(), ver.EntityID())
		}
	default:
		return fmt.Errorf("versioning: %w: target not resolved", ErrState)
	}

	v.rootID = ver.RootID()
	v.number = ver.VersionNumber()
	return nil
}

// verify runs after the rules. Rules must never repoint the root link; the
// version number is owned by the engine and silently restored.
func (v *versioning[T]) verify(x *exec, target T) error {
	ver := any(target).(Versioned)
	if ver.RootID() != v.rootID {
		return fmt.Errorf("%s %s: root %s rewritten to %s: %w",
			ver.EntityKind(), ver.EntityID(), v.rootID, ver.RootID(), ErrRootImmutable)
	}
	if ver.VersionNumber() != v.number {
		x.log.DebugContext(x.ctx, "version number restored",
			slog.String("kind", ver.EntityKind()),
			slog.Int("number", v.number),
			slog.Int("rewritten", ver.VersionNumber()),
		)
		ver.SetVersionNumber(v.number)
	}
	return nil
}
