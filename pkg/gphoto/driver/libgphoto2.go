//go:build gphoto2

package driver

/*
#cgo pkg-config: libgphoto2
#include <stdlib.h>
#include <string.h>
#include <gphoto2/gphoto2.h>

extern void goDriverLog(int level, char *domain, char *msg);

static void log_trampoline(GPLogLevel level, const char *domain, const char *str, void *data) {
	goDriverLog((int)level, (char *)domain, (char *)str);
}

static int install_log(GPLogLevel level) {
	return gp_log_add_func(level, log_trampoline, NULL);
}
*/
import "C"

import (
	"io"
	"math"
	"sync"
	"time"
	"unsafe"
)

var (
	logMu   sync.RWMutex
	logSink LogFunc
)

// Libgphoto2 calls into the system libgphoto2 through cgo.
type Libgphoto2 struct{}

// NewLibgphoto2 returns the cgo binding.
func NewLibgphoto2() (Driver, error) {
	return Libgphoto2{}, nil
}

func cam(h CameraHandle) *C.Camera { return (*C.Camera)(unsafe.Pointer(h)) }
func gpctx(h ContextHandle) *C.GPContext { return (*C.GPContext)(unsafe.Pointer(h)) }
func widget(h WidgetHandle) *C.CameraWidget { return (*C.CameraWidget)(unsafe.Pointer(h)) }

func status(rc C.int) Status { return Status(rc) }

func (Libgphoto2) Describe(st Status) string {
	return C.GoString(C.gp_result_as_string(C.int(st)))
}

func (Libgphoto2) SetLogFunc(min LogLevel, fn LogFunc) Status {
	logMu.Lock()
	logSink = fn
	logMu.Unlock()
	rc := C.install_log(C.GPLogLevel(min))
	if rc < 0 {
		return status(rc)
	}
	return OK
}

func (Libgphoto2) NewContext() (ContextHandle, Status) {
	c := C.gp_context_new()
	if c == nil {
		return 0, ErrorNoMemory
	}
	return ContextHandle(unsafe.Pointer(c)), OK
}

func (Libgphoto2) UnrefContext(ctx ContextHandle) {
	C.gp_context_unref(gpctx(ctx))
}

func readList(list *C.CameraList) ([][2]string, Status) {
	n := C.gp_list_count(list)
	if n < 0 {
		return nil, status(n)
	}
	out := make([][2]string, 0, int(n))
	for i := C.int(0); i < n; i++ {
		var name, value *C.char
		if rc := C.gp_list_get_name(list, i, &name); rc < 0 {
			return nil, status(rc)
		}
		C.gp_list_get_value(list, i, &value)
		entry := [2]string{C.GoString(name), ""}
		if value != nil {
			entry[1] = C.GoString(value)
		}
		out = append(out, entry)
	}
	return out, OK
}

func (Libgphoto2) Autodetect(ctx ContextHandle) ([]CameraListEntry, Status) {
	var list *C.CameraList
	if rc := C.gp_list_new(&list); rc < 0 {
		return nil, status(rc)
	}
	defer C.gp_list_free(list)
	if rc := C.gp_camera_autodetect(list, gpctx(ctx)); rc < 0 {
		return nil, status(rc)
	}
	pairs, st := readList(list)
	if st.Failed() {
		return nil, st
	}
	out := make([]CameraListEntry, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, CameraListEntry{Model: p[0], Port: p[1]})
	}
	return out, OK
}

func setAbilities(c *C.Camera, ctx *C.GPContext, model string) Status {
	var al *C.CameraAbilitiesList
	if rc := C.gp_abilities_list_new(&al); rc < 0 {
		return status(rc)
	}
	defer C.gp_abilities_list_free(al)
	if rc := C.gp_abilities_list_load(al, ctx); rc < 0 {
		return status(rc)
	}
	cm := C.CString(model)
	defer C.free(unsafe.Pointer(cm))
	idx := C.gp_abilities_list_lookup_model(al, cm)
	if idx < 0 {
		return status(idx)
	}
	var a C.CameraAbilities
	if rc := C.gp_abilities_list_get_abilities(al, idx, &a); rc < 0 {
		return status(rc)
	}
	return status(C.gp_camera_set_abilities(c, a))
}

func setPort(c *C.Camera, port string) Status {
	var pl *C.GPPortInfoList
	if rc := C.gp_port_info_list_new(&pl); rc < 0 {
		return status(rc)
	}
	defer C.gp_port_info_list_free(pl)
	if rc := C.gp_port_info_list_load(pl); rc < 0 {
		return status(rc)
	}
	cp := C.CString(port)
	defer C.free(unsafe.Pointer(cp))
	idx := C.gp_port_info_list_lookup_path(pl, cp)
	if idx < 0 {
		return status(idx)
	}
	var pi C.GPPortInfo
	if rc := C.gp_port_info_list_get_info(pl, idx, &pi); rc < 0 {
		return status(rc)
	}
	return status(C.gp_camera_set_port_info(c, pi))
}

func (Libgphoto2) OpenCamera(ctx ContextHandle, model, port string) (CameraHandle, Status) {
	var c *C.Camera
	if rc := C.gp_camera_new(&c); rc < 0 {
		return 0, status(rc)
	}
	if model != "" {
		if st := setAbilities(c, gpctx(ctx), model); st.Failed() {
			C.gp_camera_unref(c)
			return 0, st
		}
	}
	if port != "" {
		if st := setPort(c, port); st.Failed() {
			C.gp_camera_unref(c)
			return 0, st
		}
	}
	if rc := C.gp_camera_init(c, gpctx(ctx)); rc < 0 {
		C.gp_camera_unref(c)
		return 0, status(rc)
	}
	return CameraHandle(unsafe.Pointer(c)), OK
}

func (Libgphoto2) CloseCamera(h CameraHandle, ctx ContextHandle) Status {
	rc := C.gp_camera_exit(cam(h), gpctx(ctx))
	C.gp_camera_unref(cam(h))
	if rc < 0 {
		return status(rc)
	}
	return OK
}

func goPath(p *C.CameraFilePath) FilePath {
	return FilePath{Folder: C.GoString(&p.folder[0]), Name: C.GoString(&p.name[0])}
}

func (Libgphoto2) Capture(h CameraHandle, ctx ContextHandle, kind CaptureType) (FilePath, Status) {
	var p C.CameraFilePath
	if rc := C.gp_camera_capture(cam(h), C.CameraCaptureType(kind), &p, gpctx(ctx)); rc < 0 {
		return FilePath{}, status(rc)
	}
	return goPath(&p), OK
}

func (Libgphoto2) TriggerCapture(h CameraHandle, ctx ContextHandle) Status {
	if rc := C.gp_camera_trigger_capture(cam(h), gpctx(ctx)); rc < 0 {
		return status(rc)
	}
	return OK
}

// drainFile writes the contents of f to w.
func drainFile(f *C.CameraFile, w io.Writer) Status {
	var data *C.char
	var size C.ulong
	if rc := C.gp_file_get_data_and_size(f, &data, &size); rc < 0 {
		return status(rc)
	}
	n, ok := dataLen(uint64(size))
	if !ok {
		return ErrorFixedLimit
	}
	if n == 0 {
		return OK
	}
	// The slice aliases driver memory that stays valid until f is freed.
	if _, err := w.Write(unsafe.Slice((*byte)(unsafe.Pointer(data)), n)); err != nil {
		return ErrorIOWrite
	}
	return OK
}

func (Libgphoto2) CapturePreview(h CameraHandle, ctx ContextHandle, w io.Writer) Status {
	var f *C.CameraFile
	if rc := C.gp_file_new(&f); rc < 0 {
		return status(rc)
	}
	defer C.gp_file_free(f)
	if rc := C.gp_camera_capture_preview(cam(h), f, gpctx(ctx)); rc < 0 {
		return status(rc)
	}
	return drainFile(f, w)
}

func (Libgphoto2) Abilities(h CameraHandle) (AbilitiesRecord, Status) {
	var a C.CameraAbilities
	if rc := C.gp_camera_get_abilities(cam(h), &a); rc < 0 {
		return AbilitiesRecord{}, status(rc)
	}
	rec := AbilitiesRecord{
		Model:            C.GoString(&a.model[0]),
		Status:           int(a.status),
		PortTypes:        uint32(a.port),
		Operations:       uint32(a.operations),
		FileOperations:   uint32(a.file_operations),
		FolderOperations: uint32(a.folder_operations),
		USBVendor:        int(a.usb_vendor),
		USBProduct:       int(a.usb_product),
		USBClass:         int(a.usb_class),
		USBSubclass:      int(a.usb_subclass),
		USBProtocol:      int(a.usb_protocol),
		Library:          C.GoString(&a.library[0]),
		ID:               C.GoString(&a.id[0]),
		DeviceType:       int(a.device_type),
	}
	for _, sp := range a.speed {
		if sp == 0 {
			break
		}
		rec.Speeds = append(rec.Speeds, int(sp))
	}
	return rec, OK
}

func (Libgphoto2) PortInfo(h CameraHandle) (PortRecord, Status) {
	var pi C.GPPortInfo
	if rc := C.gp_camera_get_port_info(cam(h), &pi); rc < 0 {
		return PortRecord{}, status(rc)
	}
	var (
		typ             C.GPPortType
		name, path, lib *C.char
	)
	C.gp_port_info_get_type(pi, &typ)
	C.gp_port_info_get_name(pi, &name)
	C.gp_port_info_get_path(pi, &path)
	C.gp_port_info_get_library_filename(pi, &lib)
	rec := PortRecord{Type: uint32(typ)}
	if name != nil {
		rec.Name = C.GoString(name)
	}
	if path != nil {
		rec.Path = C.GoString(path)
	}
	if lib != nil {
		rec.Library = C.GoString(lib)
	}
	return rec, OK
}

func cameraText(get func(*C.CameraText) C.int) ([]byte, Status) {
	var t C.CameraText
	if rc := get(&t); rc < 0 {
		return nil, status(rc)
	}
	n := C.strnlen(&t.text[0], C.size_t(len(t.text)))
	return C.GoBytes(unsafe.Pointer(&t.text[0]), C.int(n)), OK
}

func (Libgphoto2) Summary(h CameraHandle, ctx ContextHandle) ([]byte, Status) {
	return cameraText(func(t *C.CameraText) C.int { return C.gp_camera_get_summary(cam(h), t, gpctx(ctx)) })
}

func (Libgphoto2) About(h CameraHandle, ctx ContextHandle) ([]byte, Status) {
	return cameraText(func(t *C.CameraText) C.int { return C.gp_camera_get_about(cam(h), t, gpctx(ctx)) })
}

func (Libgphoto2) Manual(h CameraHandle, ctx ContextHandle) ([]byte, Status) {
	return cameraText(func(t *C.CameraText) C.int { return C.gp_camera_get_manual(cam(h), t, gpctx(ctx)) })
}

func (Libgphoto2) StorageInfo(h CameraHandle, ctx ContextHandle) ([]StorageRecord, Status) {
	var sifs *C.CameraStorageInformation
	var n C.int
	if rc := C.gp_camera_get_storageinfo(cam(h), &sifs, &n, gpctx(ctx)); rc < 0 {
		return nil, status(rc)
	}
	defer C.free(unsafe.Pointer(sifs))
	out := make([]StorageRecord, 0, int(n))
	for _, si := range unsafe.Slice(sifs, int(n)) {
		out = append(out, StorageRecord{
			Fields:      uint32(si.fields),
			Basedir:     C.GoString(&si.basedir[0]),
			Label:       C.GoString(&si.label[0]),
			Description: C.GoString(&si.description[0]),
			Type:        int(si._type),
			FSType:      int(si.fstype),
			Access:      int(si.access),
			CapacityKB:  uint64(si.capacitykbytes),
			FreeKB:      uint64(si.freekbytes),
			FreeImages:  uint64(si.freeimages),
		})
	}
	return out, OK
}

func (Libgphoto2) GetConfig(h CameraHandle, ctx ContextHandle) (WidgetHandle, Status) {
	var w *C.CameraWidget
	if rc := C.gp_camera_get_config(cam(h), &w, gpctx(ctx)); rc < 0 {
		return 0, status(rc)
	}
	return WidgetHandle(unsafe.Pointer(w)), OK
}

func (Libgphoto2) GetSingleConfig(h CameraHandle, ctx ContextHandle, name string) (WidgetHandle, Status) {
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	var w *C.CameraWidget
	if rc := C.gp_camera_get_single_config(cam(h), cn, &w, gpctx(ctx)); rc < 0 {
		return 0, status(rc)
	}
	return WidgetHandle(unsafe.Pointer(w)), OK
}

func (Libgphoto2) SetConfig(h CameraHandle, ctx ContextHandle, w WidgetHandle) Status {
	if rc := C.gp_camera_set_config(cam(h), widget(w), gpctx(ctx)); rc < 0 {
		return status(rc)
	}
	return OK
}

func (Libgphoto2) SetSingleConfig(h CameraHandle, ctx ContextHandle, name string, w WidgetHandle) Status {
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	if rc := C.gp_camera_set_single_config(cam(h), cn, widget(w), gpctx(ctx)); rc < 0 {
		return status(rc)
	}
	return OK
}

func (Libgphoto2) WidgetInfo(h WidgetHandle) (WidgetInfo, Status) {
	w := widget(h)
	var (
		name, label, info *C.char
		typ               C.CameraWidgetType
		id, ro            C.int
	)
	if rc := C.gp_widget_get_name(w, &name); rc < 0 {
		return WidgetInfo{}, status(rc)
	}
	C.gp_widget_get_label(w, &label)
	C.gp_widget_get_info(w, &info)
	if rc := C.gp_widget_get_type(w, &typ); rc < 0 {
		return WidgetInfo{}, status(rc)
	}
	C.gp_widget_get_id(w, &id)
	C.gp_widget_get_readonly(w, &ro)
	out := WidgetInfo{
		Name:     C.GoString(name),
		Kind:     WidgetKind(typ),
		ID:       int(id),
		ReadOnly: ro != 0,
		Changed:  C.gp_widget_changed(w) != 0,
	}
	if label != nil {
		out.Label = C.GoString(label)
	}
	if info != nil {
		out.Info = C.GoString(info)
	}
	return out, OK
}

func (Libgphoto2) WidgetChildCount(h WidgetHandle) (int, Status) {
	n := C.gp_widget_count_children(widget(h))
	if n < 0 {
		return 0, status(n)
	}
	return int(n), OK
}

func (Libgphoto2) WidgetChild(h WidgetHandle, i int) (WidgetHandle, Status) {
	var child *C.CameraWidget
	if rc := C.gp_widget_get_child(widget(h), C.int(i), &child); rc < 0 {
		return 0, status(rc)
	}
	return WidgetHandle(unsafe.Pointer(child)), OK
}

func (Libgphoto2) WidgetChildByName(h WidgetHandle, name string) (WidgetHandle, Status) {
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	var child *C.CameraWidget
	if rc := C.gp_widget_get_child_by_name(widget(h), cn, &child); rc < 0 {
		return 0, status(rc)
	}
	return WidgetHandle(unsafe.Pointer(child)), OK
}

func (Libgphoto2) WidgetChildByLabel(h WidgetHandle, label string) (WidgetHandle, Status) {
	cl := C.CString(label)
	defer C.free(unsafe.Pointer(cl))
	var child *C.CameraWidget
	if rc := C.gp_widget_get_child_by_label(widget(h), cl, &child); rc < 0 {
		return 0, status(rc)
	}
	return WidgetHandle(unsafe.Pointer(child)), OK
}

func widgetType(w *C.CameraWidget) (WidgetKind, Status) {
	var typ C.CameraWidgetType
	if rc := C.gp_widget_get_type(w, &typ); rc < 0 {
		return 0, status(rc)
	}
	return WidgetKind(typ), OK
}

func (Libgphoto2) WidgetValue(h WidgetHandle) (WidgetValue, Status) {
	w := widget(h)
	kind, st := widgetType(w)
	if st.Failed() {
		return WidgetValue{}, st
	}
	var v WidgetValue
	switch kind {
	case WidgetText, WidgetRadio, WidgetMenu:
		var cs *C.char
		if rc := C.gp_widget_get_value(w, unsafe.Pointer(&cs)); rc < 0 {
			return v, status(rc)
		}
		if cs != nil {
			v.String = C.GoString(cs)
		}
	case WidgetRange:
		var f C.float
		if rc := C.gp_widget_get_value(w, unsafe.Pointer(&f)); rc < 0 {
			return v, status(rc)
		}
		v.Float = float32(f)
	case WidgetToggle, WidgetDate:
		var i C.int
		if rc := C.gp_widget_get_value(w, unsafe.Pointer(&i)); rc < 0 {
			return v, status(rc)
		}
		v.Int = int(i)
	default:
		return v, ErrorBadParameters
	}
	return v, OK
}

func (Libgphoto2) SetWidgetValue(h WidgetHandle, v WidgetValue) Status {
	w := widget(h)
	kind, st := widgetType(w)
	if st.Failed() {
		return st
	}
	var rc C.int
	switch kind {
	case WidgetText, WidgetRadio, WidgetMenu:
		cs := C.CString(v.String)
		defer C.free(unsafe.Pointer(cs))
		rc = C.gp_widget_set_value(w, unsafe.Pointer(cs))
	case WidgetRange:
		f := C.float(v.Float)
		rc = C.gp_widget_set_value(w, unsafe.Pointer(&f))
	case WidgetToggle, WidgetDate:
		if v.Int < math.MinInt32 || v.Int > math.MaxInt32 {
			return ErrorBadParameters
		}
		i := C.int(v.Int)
		rc = C.gp_widget_set_value(w, unsafe.Pointer(&i))
	default:
		return ErrorBadParameters
	}
	if rc < 0 {
		return status(rc)
	}
	return OK
}

func (Libgphoto2) SetWidgetChanged(h WidgetHandle, changed bool) Status {
	flag := C.int(0)
	if changed {
		flag = 1
	}
	if rc := C.gp_widget_set_changed(widget(h), flag); rc < 0 {
		return status(rc)
	}
	return OK
}

func (Libgphoto2) WidgetRange(h WidgetHandle) (float32, float32, float32, Status) {
	var min, max, inc C.float
	if rc := C.gp_widget_get_range(widget(h), &min, &max, &inc); rc < 0 {
		return 0, 0, 0, status(rc)
	}
	return float32(min), float32(max), float32(inc), OK
}

func (Libgphoto2) WidgetChoices(h WidgetHandle) ([]string, Status) {
	w := widget(h)
	n := C.gp_widget_count_choices(w)
	if n < 0 {
		return nil, status(n)
	}
	out := make([]string, 0, int(n))
	for i := C.int(0); i < n; i++ {
		var cs *C.char
		if rc := C.gp_widget_get_choice(w, i, &cs); rc < 0 {
			return nil, status(rc)
		}
		out = append(out, C.GoString(cs))
	}
	return out, OK
}

func (Libgphoto2) UnrefWidget(h WidgetHandle) {
	C.gp_widget_free(widget(h))
}

func (Libgphoto2) WaitForEvent(h CameraHandle, ctx ContextHandle, timeout time.Duration) (EventTag, any, Status) {
	var (
		typ  C.CameraEventType
		data unsafe.Pointer
	)
	rc := C.gp_camera_wait_for_event(cam(h), C.int(waitMillis(timeout)), &typ, &data, gpctx(ctx))
	if rc < 0 {
		return EventUnknown, nil, status(rc)
	}
	if data != nil {
		defer C.free(data)
	}
	tag := EventTag(typ)
	switch tag {
	case EventFileAdded, EventFolderAdded, EventFileChanged:
		if data == nil {
			return tag, nil, OK
		}
		return tag, goPath((*C.CameraFilePath)(data)), OK
	case EventUnknown:
		if data == nil {
			return tag, nil, OK
		}
		return tag, C.GoString((*C.char)(data)), OK
	}
	return tag, nil, OK
}

func listFolder(h CameraHandle, ctx ContextHandle, folder string,
	list func(*C.Camera, *C.char, *C.CameraList, *C.GPContext) C.int) ([]string, Status) {
	cf := C.CString(folder)
	defer C.free(unsafe.Pointer(cf))
	var l *C.CameraList
	if rc := C.gp_list_new(&l); rc < 0 {
		return nil, status(rc)
	}
	defer C.gp_list_free(l)
	if rc := list(cam(h), cf, l, gpctx(ctx)); rc < 0 {
		return nil, status(rc)
	}
	pairs, st := readList(l)
	if st.Failed() {
		return nil, st
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p[0])
	}
	return out, OK
}

func (Libgphoto2) ListFolders(h CameraHandle, ctx ContextHandle, folder string) ([]string, Status) {
	return listFolder(h, ctx, folder, func(c *C.Camera, f *C.char, l *C.CameraList, x *C.GPContext) C.int {
		return C.gp_camera_folder_list_folders(c, f, l, x)
	})
}

func (Libgphoto2) ListFiles(h CameraHandle, ctx ContextHandle, folder string) ([]string, Status) {
	return listFolder(h, ctx, folder, func(c *C.Camera, f *C.char, l *C.CameraList, x *C.GPContext) C.int {
		return C.gp_camera_folder_list_files(c, f, l, x)
	})
}

func (Libgphoto2) FileInfo(h CameraHandle, ctx ContextHandle, folder, name string) (FileInfoRecord, Status) {
	cf, cn := C.CString(folder), C.CString(name)
	defer C.free(unsafe.Pointer(cf))
	defer C.free(unsafe.Pointer(cn))
	var info C.CameraFileInfo
	if rc := C.gp_camera_file_get_info(cam(h), cf, cn, &info, gpctx(ctx)); rc < 0 {
		return FileInfoRecord{}, status(rc)
	}
	f := info.file
	return FileInfoRecord{
		Fields:      uint32(f.fields),
		Type:        C.GoString(&f._type[0]),
		Size:        uint64(f.size),
		Width:       int(f.width),
		Height:      int(f.height),
		Permissions: int(f.permissions),
		Mtime:       int64(f.mtime),
	}, OK
}

func (Libgphoto2) GetFile(h CameraHandle, ctx ContextHandle, folder, name string, kind FileType, w io.Writer) Status {
	cf, cn := C.CString(folder), C.CString(name)
	defer C.free(unsafe.Pointer(cf))
	defer C.free(unsafe.Pointer(cn))
	var f *C.CameraFile
	if rc := C.gp_file_new(&f); rc < 0 {
		return status(rc)
	}
	defer C.gp_file_free(f)
	if rc := C.gp_camera_file_get(cam(h), cf, cn, C.CameraFileType(kind), f, gpctx(ctx)); rc < 0 {
		return status(rc)
	}
	return drainFile(f, w)
}

func (Libgphoto2) DeleteFile(h CameraHandle, ctx ContextHandle, folder, name string) Status {
	cf, cn := C.CString(folder), C.CString(name)
	defer C.free(unsafe.Pointer(cf))
	defer C.free(unsafe.Pointer(cn))
	if rc := C.gp_camera_file_delete(cam(h), cf, cn, gpctx(ctx)); rc < 0 {
		return status(rc)
	}
	return OK
}

func (Libgphoto2) MakeDir(h CameraHandle, ctx ContextHandle, parent, name string) Status {
	cp, cn := C.CString(parent), C.CString(name)
	defer C.free(unsafe.Pointer(cp))
	defer C.free(unsafe.Pointer(cn))
	if rc := C.gp_camera_folder_make_dir(cam(h), cp, cn, gpctx(ctx)); rc < 0 {
		return status(rc)
	}
	return OK
}

func (Libgphoto2) RemoveDir(h CameraHandle, ctx ContextHandle, parent, name string) Status {
	cp, cn := C.CString(parent), C.CString(name)
	defer C.free(unsafe.Pointer(cp))
	defer C.free(unsafe.Pointer(cn))
	if rc := C.gp_camera_folder_remove_dir(cam(h), cp, cn, gpctx(ctx)); rc < 0 {
		return status(rc)
	}
	return OK
}
