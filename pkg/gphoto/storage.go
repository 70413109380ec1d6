package gphoto

import (
	"fmt"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

// StorageType is the hardware kind of a storage unit.
type StorageType int

const (
	StorageUnknown StorageType = iota
	StorageFixedROM
	StorageRemovableROM
	StorageFixedRAM
	StorageRemovableRAM
)

var storageTypeNames = [...]string{"unknown", "fixed_rom", "removable_rom", "fixed_ram", "removable_ram"}

func (t StorageType) String() string {
	if t >= 0 && int(t) < len(storageTypeNames) {
		return storageTypeNames[t]
	}
	return fmt.Sprintf("storage(%d)", int(t))
}

func (t StorageType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// FilesystemType is the layout of a storage unit.
type FilesystemType int

const (
	FSUndefined FilesystemType = iota
	FSGenericFlat
	FSGenericHierarchical
	FSDCF
)

var fsTypeNames = [...]string{"undefined", "generic_flat", "generic_hierarchical", "dcf"}

func (t FilesystemType) String() string {
	if t >= 0 && int(t) < len(fsTypeNames) {
		return fsTypeNames[t]
	}
	return fmt.Sprintf("fs(%d)", int(t))
}

func (t FilesystemType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// AccessRights tells what may be done with a storage unit.
type AccessRights int

const (
	AccessReadWrite AccessRights = iota
	AccessReadOnly
	AccessReadOnlyWithDelete
)

var accessNames = [...]string{"read_write", "read_only", "read_only_with_delete"}

func (a AccessRights) String() string {
	if a >= 0 && int(a) < len(accessNames) {
		return accessNames[a]
	}
	return fmt.Sprintf("access(%d)", int(a))
}

func (a AccessRights) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// StorageInfo describes one storage unit. Nil fields were not reported by
// the driver.
type StorageInfo struct {
	Basedir     *string         `json:"basedir,omitempty"`
	Label       *string         `json:"label,omitempty"`
	Description *string         `json:"description,omitempty"`
	Type        *StorageType    `json:"type,omitempty"`
	FSType      *FilesystemType `json:"fs_type,omitempty"`
	Access      *AccessRights   `json:"access,omitempty"`
	CapacityKB  *uint64         `json:"capacity_kb,omitempty"`
	FreeKB      *uint64         `json:"free_kb,omitempty"`
	FreeImages  *uint64         `json:"free_images,omitempty"`
}

func newStorageInfo(r driver.StorageRecord) StorageInfo {
	var si StorageInfo
	has := func(bit uint32) bool { return r.Fields&bit != 0 }
	if has(driver.StorageFieldBase) {
		si.Basedir = &r.Basedir
	}
	if has(driver.StorageFieldLabel) {
		si.Label = &r.Label
	}
	if has(driver.StorageFieldDescription) {
		si.Description = &r.Description
	}
	if has(driver.StorageFieldType) {
		t := StorageType(r.Type)
		si.Type = &t
	}
	if has(driver.StorageFieldFSType) {
		t := FilesystemType(r.FSType)
		si.FSType = &t
	}
	if has(driver.StorageFieldAccess) {
		a := AccessRights(r.Access)
		si.Access = &a
	}
	if has(driver.StorageFieldCapacity) {
		si.CapacityKB = &r.CapacityKB
	}
	if has(driver.StorageFieldFreeKB) {
		si.FreeKB = &r.FreeKB
	}
	if has(driver.StorageFieldFreeImages) {
		si.FreeImages = &r.FreeImages
	}
	return si
}
