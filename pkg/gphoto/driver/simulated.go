package driver

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// Simulated default identity.
const (
	SimulatedModel = "Canon EOS 5D Mark III"
	SimulatedPort  = "usb:001,004"

	simStorage  = "/store_00010001"
	simDCIM     = simStorage + "/DCIM"
	simPictures = simDCIM + "/100CANON"
)

// Simulated is an in-memory Driver modelling one attached camera. It is
// used for development without hardware and as the device in tests. All
// methods are safe for concurrent use.
type Simulated struct {
	mu     sync.Mutex
	notify chan struct{}

	next     uintptr
	logFn    LogFunc
	logMin   LogLevel
	failures map[string]Status

	connected bool
	contexts  map[ContextHandle]struct{}
	cameras   map[CameraHandle]struct{}
	widgets   map[WidgetHandle]*simWidget

	config  *simWidget
	folders map[string]*simFolder
	events  []simEvent
	shots   int

	summary []byte
	about   []byte
	presses []string
	writes  int
}

type simFolder struct {
	subfolders []string
	files      []*simFile
}

type simFile struct {
	name  string
	mime  string
	data  []byte
	mtime time.Time
}

type simEvent struct {
	tag     EventTag
	payload any
}

type simWidget struct {
	info     WidgetInfo
	value    WidgetValue
	min      float32
	max      float32
	step     float32
	choices  []string
	children []*simWidget
	root     *simWidget
	handles  []WidgetHandle
}

// NewSimulated returns a connected simulated camera with a Canon-like
// configuration tree and one picture on its card.
func NewSimulated() *Simulated {
	s := &Simulated{
		notify:    make(chan struct{}, 1),
		failures:  make(map[string]Status),
		connected: true,
		contexts:  make(map[ContextHandle]struct{}),
		cameras:   make(map[CameraHandle]struct{}),
		widgets:   make(map[WidgetHandle]*simWidget),
		folders:   make(map[string]*simFolder),
		config:    defaultSimConfig(),
		summary: []byte("Manufacturer: Canon Inc.\nModel: " + SimulatedModel +
			"\n  Version: 1-1.3.4\n  Serial Number: 032021004312\nVendor Extension ID: 0xb (1.0)\n"),
		about: []byte("PTP2 driver (simulated)\nThis driver answers from memory.\n"),
	}
	s.folders["/"] = &simFolder{subfolders: []string{"store_00010001"}}
	s.folders[simStorage] = &simFolder{subfolders: []string{"DCIM"}}
	s.folders[simDCIM] = &simFolder{subfolders: []string{"100CANON"}}
	s.folders[simPictures] = &simFolder{}
	s.shots = 1
	s.folders[simPictures].files = append(s.folders[simPictures].files, &simFile{
		name:  "IMG_0001.JPG",
		mime:  "image/jpeg",
		data:  fakeJPEG(1),
		mtime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	return s
}

func defaultSimConfig() *simWidget {
	id := 0
	nw := func(name, label string, kind WidgetKind) *simWidget {
		id++
		return &simWidget{info: WidgetInfo{Name: name, Label: label, Kind: kind, ID: id}}
	}
	group := func(w *simWidget, children ...*simWidget) *simWidget {
		w.children = children
		return w
	}
	text := func(name, label, value string, ro bool) *simWidget {
		w := nw(name, label, WidgetText)
		w.value.String = value
		w.info.ReadOnly = ro
		return w
	}
	choice := func(kind WidgetKind, name, label, value string, choices ...string) *simWidget {
		w := nw(name, label, kind)
		w.value.String = value
		w.choices = choices
		return w
	}
	rng := func(name, label string, min, max, step, value float32) *simWidget {
		w := nw(name, label, WidgetRange)
		w.min, w.max, w.step = min, max, step
		w.value.Float = value
		return w
	}
	toggle := func(name, label string, value int) *simWidget {
		w := nw(name, label, WidgetToggle)
		w.value.Int = value
		return w
	}
	date := func(name, label string, unix int) *simWidget {
		w := nw(name, label, WidgetDate)
		w.value.Int = unix
		return w
	}

	root := group(nw("main", "Camera and Driver Configuration", WidgetWindow),
		group(nw("actions", "Camera Actions", WidgetSection),
			toggle("autofocusdrive", "Drive Canon DSLR Autofocus", 0),
			choice(WidgetRadio, "manualfocusdrive", "Drive Canon DSLR Manual focus", "None",
				"Near 1", "Near 2", "Near 3", "None", "Far 1", "Far 2", "Far 3"),
			toggle("viewfinder", "Canon EOS Viewfinder", 2),
			nw("resetsettings", "Reset Camera Settings", WidgetButton),
		),
		group(nw("settings", "Camera Settings", WidgetSection),
			date("datetime", "Camera Date and Time", 1714564800),
			text("artist", "Artist", "", false),
			text("copyright", "Copyright", "", false),
			choice(WidgetRadio, "capturetarget", "Capture Target", "Memory card", "Internal RAM", "Memory card"),
			choice(WidgetRadio, "reviewtime", "Quick Review Time", "2 seconds", "None", "2 seconds", "4 seconds", "8 seconds", "Hold"),
		),
		group(nw("imgsettings", "Image Settings", WidgetSection),
			choice(WidgetRadio, "imageformat", "Image Format", "Large Fine JPEG",
				"Large Fine JPEG", "Large Normal JPEG", "Medium Fine JPEG", "RAW", "RAW + Large Fine JPEG"),
			choice(WidgetRadio, "iso", "ISO Speed", "Auto", "Auto", "100", "200", "400", "800", "1600", "3200", "6400"),
			choice(WidgetRadio, "whitebalance", "WhiteBalance", "Auto", "Auto", "Daylight", "Shadow", "Cloudy", "Tungsten", "Fluorescent", "Flash"),
		),
		group(nw("capturesettings", "Capture Settings", WidgetSection),
			choice(WidgetRadio, "aperture", "Aperture", "5.6", "2.8", "4", "5.6", "8", "11", "16", "22"),
			choice(WidgetRadio, "shutterspeed", "Shutter Speed", "1/125", "bulb", "1", "1/30", "1/60", "1/125", "1/250", "1/500"),
			choice(WidgetMenu, "focusmode", "Focus Mode", "One Shot", "One Shot", "AI Focus", "AI Servo", "Manual"),
			rng("flashcompensation", "Flash Compensation", -3, 3, 0.5, 0),
			rng("zoom", "Zoom", 0, 100, 1, 0),
		),
		group(nw("status", "Camera Status Information", WidgetSection),
			text("serialnumber", "Serial Number", "032021004312", true),
			text("manufacturer", "Camera Manufacturer", "Canon Inc.", true),
			text("cameramodel", "Camera Model", SimulatedModel, true),
			text("batterylevel", "Battery Level", "100%", true),
		),
	)
	return root
}

func fakeJPEG(n int) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	fmt.Fprintf(&buf, "simulated frame %04d", n)
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

// Fail makes the next call of the named operation (the Driver method name)
// return st.
func (s *Simulated) Fail(op string, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = st
}

// SetConnected attaches or detaches the simulated device.
func (s *Simulated) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
}

// SetSummary replaces the raw summary text.
func (s *Simulated) SetSummary(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = raw
}

// QueueEvent appends an event for WaitForEvent and wakes a blocked waiter.
func (s *Simulated) QueueEvent(tag EventTag, payload any) {
	s.mu.Lock()
	s.events = append(s.events, simEvent{tag: tag, payload: payload})
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// AddFile stores a file on the card and queues the matching FileAdded event.
func (s *Simulated) AddFile(folder, name string, data []byte) {
	s.mu.Lock()
	s.addFileLocked(folder, name, data)
	s.mu.Unlock()
	s.QueueEvent(EventFileAdded, FilePath{Folder: folder, Name: name})
}

// LiveContexts returns the number of contexts not yet released.
func (s *Simulated) LiveContexts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contexts)
}

// OpenCameras returns the number of camera handles not yet closed.
func (s *Simulated) OpenCameras() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cameras)
}

// LiveWidgets returns the number of widget handles not yet released.
func (s *Simulated) LiveWidgets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.widgets)
}

// Writes returns the number of SetConfig and SetSingleConfig calls that
// reached the device.
func (s *Simulated) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Presses returns the names of buttons pressed so far.
func (s *Simulated) Presses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.presses...)
}

func (s *Simulated) injected(op string) (Status, bool) {
	st, ok := s.failures[op]
	if ok {
		delete(s.failures, op)
	}
	return st, ok
}

func (s *Simulated) logf(level LogLevel, domain, format string, args ...any) {
	if s.logFn == nil || level > s.logMin {
		return
	}
	s.logFn(level, domain, fmt.Sprintf(format, args...))
}

func (s *Simulated) handle() uintptr {
	s.next++
	return s.next
}

func (s *Simulated) cameraOK(cam CameraHandle) bool {
	_, ok := s.cameras[cam]
	return ok
}

func (s *Simulated) Describe(st Status) string { return st.String() }

func (s *Simulated) SetLogFunc(min LogLevel, fn LogFunc) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logFn, s.logMin = fn, min
	return OK
}

func (s *Simulated) NewContext() (ContextHandle, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.injected("NewContext"); ok {
		return 0, st
	}
	h := ContextHandle(s.handle())
	s.contexts[h] = struct{}{}
	return h, OK
}

func (s *Simulated) UnrefContext(ctx ContextHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, ctx)
}

func (s *Simulated) Autodetect(ctx ContextHandle) ([]CameraListEntry, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.injected("Autodetect"); ok {
		return nil, st
	}
	if !s.connected {
		return nil, OK
	}
	return []CameraListEntry{{Model: SimulatedModel, Port: SimulatedPort}}, OK
}

func (s *Simulated) OpenCamera(ctx ContextHandle, model, port string) (CameraHandle, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.injected("OpenCamera"); ok {
		return 0, st
	}
	if !s.connected {
		return 0, ErrorModelNotFound
	}
	if model != "" && model != SimulatedModel {
		return 0, ErrorModelNotFound
	}
	if port != "" && port != SimulatedPort {
		return 0, ErrorUnknownPort
	}
	h := CameraHandle(s.handle())
	s.cameras[h] = struct{}{}
	s.logf(LogVerbose, "gp-camera", "Initializing camera %s on %s", SimulatedModel, SimulatedPort)
	return h, OK
}

func (s *Simulated) CloseCamera(cam CameraHandle, ctx ContextHandle) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return ErrorBadParameters
	}
	delete(s.cameras, cam)
	s.logf(LogDebug, "gp-camera", "Closed camera handle %d", cam)
	return OK
}

func (s *Simulated) shoot() FilePath {
	s.shots++
	name := fmt.Sprintf("IMG_%04d.JPG", s.shots)
	s.addFileLocked(simPictures, name, fakeJPEG(s.shots))
	return FilePath{Folder: simPictures, Name: name}
}

func (s *Simulated) Capture(cam CameraHandle, ctx ContextHandle, kind CaptureType) (FilePath, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return FilePath{}, ErrorBadParameters
	}
	if st, ok := s.injected("Capture"); ok {
		return FilePath{}, st
	}
	if kind != CaptureImage {
		return FilePath{}, ErrorNotSupported
	}
	p := s.shoot()
	s.logf(LogDebug, "ptp2/capture", "Captured %s", path.Join(p.Folder, p.Name))
	return p, OK
}

func (s *Simulated) TriggerCapture(cam CameraHandle, ctx ContextHandle) Status {
	s.mu.Lock()
	if !s.cameraOK(cam) {
		s.mu.Unlock()
		return ErrorBadParameters
	}
	if st, ok := s.injected("TriggerCapture"); ok {
		s.mu.Unlock()
		return st
	}
	p := s.shoot()
	s.mu.Unlock()
	s.QueueEvent(EventFileAdded, p)
	s.QueueEvent(EventCaptureComplete, nil)
	return OK
}

func (s *Simulated) CapturePreview(cam CameraHandle, ctx ContextHandle, w io.Writer) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return ErrorBadParameters
	}
	if st, ok := s.injected("CapturePreview"); ok {
		return st
	}
	if _, err := w.Write(fakeJPEG(0)); err != nil {
		return ErrorIOWrite
	}
	return OK
}

func (s *Simulated) Abilities(cam CameraHandle) (AbilitiesRecord, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return AbilitiesRecord{}, ErrorBadParameters
	}
	if st, ok := s.injected("Abilities"); ok {
		return AbilitiesRecord{}, st
	}
	return AbilitiesRecord{
		Model:            SimulatedModel,
		Status:           0,
		PortTypes:        1 << 2,
		Operations:       1<<0 | 1<<3 | 1<<4 | 1<<5,
		FileOperations:   1<<1 | 1<<3,
		FolderOperations: 1<<1 | 1<<2 | 1<<3,
		USBVendor:        0x04a9,
		USBProduct:       0x3234,
		Library:          "ptp2",
		ID:               "PTP",
	}, OK
}

func (s *Simulated) PortInfo(cam CameraHandle) (PortRecord, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return PortRecord{}, ErrorBadParameters
	}
	if st, ok := s.injected("PortInfo"); ok {
		return PortRecord{}, st
	}
	return PortRecord{Type: 1 << 2, Name: "Universal Serial Bus", Path: SimulatedPort, Library: "usb1"}, OK
}

func (s *Simulated) text(cam CameraHandle, op string, get func() []byte) ([]byte, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return nil, ErrorBadParameters
	}
	if st, ok := s.injected(op); ok {
		return nil, st
	}
	data := get()
	if data == nil {
		return nil, ErrorNotSupported
	}
	return append([]byte(nil), data...), OK
}

func (s *Simulated) Summary(cam CameraHandle, ctx ContextHandle) ([]byte, Status) {
	return s.text(cam, "Summary", func() []byte { return s.summary })
}

func (s *Simulated) About(cam CameraHandle, ctx ContextHandle) ([]byte, Status) {
	return s.text(cam, "About", func() []byte { return s.about })
}

// Manual is not provided by the simulated camera.
func (s *Simulated) Manual(cam CameraHandle, ctx ContextHandle) ([]byte, Status) {
	return s.text(cam, "Manual", func() []byte { return nil })
}

func (s *Simulated) StorageInfo(cam CameraHandle, ctx ContextHandle) ([]StorageRecord, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return nil, ErrorBadParameters
	}
	if st, ok := s.injected("StorageInfo"); ok {
		return nil, st
	}
	var used uint64
	for _, f := range s.folders {
		for _, file := range f.files {
			used += uint64(len(file.data))
		}
	}
	const capacity = 31_154_688
	return []StorageRecord{{
		Fields: StorageFieldBase | StorageFieldLabel | StorageFieldDescription | StorageFieldAccess |
			StorageFieldType | StorageFieldFSType | StorageFieldCapacity | StorageFieldFreeKB | StorageFieldFreeImages,
		Basedir:     simStorage,
		Label:       "EOS_DIGITAL",
		Description: "SD",
		Type:        4,
		FSType:      3,
		Access:      0,
		CapacityKB:  capacity,
		FreeKB:      capacity - used/1024,
		FreeImages:  2431,
	}}, OK
}

// cloneLocked copies w into a fresh tree with registered handles.
func (s *Simulated) cloneLocked(w *simWidget, root *simWidget) *simWidget {
	c := &simWidget{
		info:    w.info,
		value:   w.value,
		min:     w.min,
		max:     w.max,
		step:    w.step,
		choices: append([]string(nil), w.choices...),
	}
	c.info.Changed = false
	if root == nil {
		root = c
	}
	c.root = root
	h := WidgetHandle(s.handle())
	s.widgets[h] = c
	root.handles = append(root.handles, h)
	for _, child := range w.children {
		c.children = append(c.children, s.cloneLocked(child, root))
	}
	return c
}

func (s *Simulated) handleOf(w *simWidget) WidgetHandle {
	for _, h := range w.root.handles {
		if s.widgets[h] == w {
			return h
		}
	}
	return 0
}

func findWidget(w *simWidget, name string) *simWidget {
	if w.info.Name == name {
		return w
	}
	for _, c := range w.children {
		if found := findWidget(c, name); found != nil {
			return found
		}
	}
	return nil
}

func (s *Simulated) GetConfig(cam CameraHandle, ctx ContextHandle) (WidgetHandle, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return 0, ErrorBadParameters
	}
	if st, ok := s.injected("GetConfig"); ok {
		return 0, st
	}
	root := s.cloneLocked(s.config, nil)
	return root.handles[0], OK
}

func (s *Simulated) GetSingleConfig(cam CameraHandle, ctx ContextHandle, name string) (WidgetHandle, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return 0, ErrorBadParameters
	}
	if st, ok := s.injected("GetSingleConfig"); ok {
		return 0, st
	}
	w := findWidget(s.config, name)
	if w == nil {
		s.logf(LogError, "gphoto2-camera", "Widget '%s' not found", name)
		return 0, ErrorBadParameters
	}
	root := s.cloneLocked(w, nil)
	return root.handles[0], OK
}

// applyLocked writes src into the device widget with the same name.
func (s *Simulated) applyLocked(src *simWidget, name string) Status {
	dst := findWidget(s.config, name)
	if dst == nil {
		return ErrorBadParameters
	}
	if dst.info.Kind != src.info.Kind {
		return ErrorBadParameters
	}
	if dst.info.Kind == WidgetButton {
		s.presses = append(s.presses, name)
		return OK
	}
	if dst.info.ReadOnly {
		return ErrorNotSupported
	}
	dst.value = src.value
	return OK
}

func (s *Simulated) applyChangedLocked(w *simWidget) Status {
	if w.info.Changed && w.info.Kind != WidgetWindow && w.info.Kind != WidgetSection {
		if st := s.applyLocked(w, w.info.Name); st.Failed() {
			return st
		}
	}
	w.info.Changed = false
	for _, c := range w.children {
		if st := s.applyChangedLocked(c); st.Failed() {
			return st
		}
	}
	return OK
}

func (s *Simulated) SetConfig(cam CameraHandle, ctx ContextHandle, w WidgetHandle) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return ErrorBadParameters
	}
	src, ok := s.widgets[w]
	if !ok {
		return ErrorBadParameters
	}
	if st, ok := s.injected("SetConfig"); ok {
		return st
	}
	s.writes++
	return s.applyChangedLocked(src)
}

func (s *Simulated) SetSingleConfig(cam CameraHandle, ctx ContextHandle, name string, w WidgetHandle) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return ErrorBadParameters
	}
	src, ok := s.widgets[w]
	if !ok {
		return ErrorBadParameters
	}
	if st, ok := s.injected("SetSingleConfig"); ok {
		return st
	}
	s.writes++
	if st := s.applyLocked(src, name); st.Failed() {
		return st
	}
	src.info.Changed = false
	return OK
}

func (s *Simulated) widget(w WidgetHandle) (*simWidget, Status) {
	sw, ok := s.widgets[w]
	if !ok {
		return nil, ErrorBadParameters
	}
	return sw, OK
}

func (s *Simulated) WidgetInfo(w WidgetHandle) (WidgetInfo, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, st := s.widget(w)
	if st.Failed() {
		return WidgetInfo{}, st
	}
	return sw.info, OK
}

func (s *Simulated) WidgetChildCount(w WidgetHandle) (int, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, st := s.widget(w)
	if st.Failed() {
		return 0, st
	}
	return len(sw.children), OK
}

func (s *Simulated) WidgetChild(w WidgetHandle, i int) (WidgetHandle, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, st := s.widget(w)
	if st.Failed() {
		return 0, st
	}
	if i < 0 || i >= len(sw.children) {
		return 0, ErrorBadParameters
	}
	return s.handleOf(sw.children[i]), OK
}

func (s *Simulated) childBy(w WidgetHandle, match func(*simWidget) bool) (WidgetHandle, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, st := s.widget(w)
	if st.Failed() {
		return 0, st
	}
	for _, c := range sw.children {
		if match(c) {
			return s.handleOf(c), OK
		}
	}
	return 0, ErrorBadParameters
}

func (s *Simulated) WidgetChildByName(w WidgetHandle, name string) (WidgetHandle, Status) {
	return s.childBy(w, func(c *simWidget) bool { return c.info.Name == name })
}

func (s *Simulated) WidgetChildByLabel(w WidgetHandle, label string) (WidgetHandle, Status) {
	return s.childBy(w, func(c *simWidget) bool { return c.info.Label == label })
}

func hasValue(k WidgetKind) bool {
	switch k {
	case WidgetWindow, WidgetSection, WidgetButton:
		return false
	}
	return true
}

func (s *Simulated) WidgetValue(w WidgetHandle) (WidgetValue, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, st := s.widget(w)
	if st.Failed() {
		return WidgetValue{}, st
	}
	if !hasValue(sw.info.Kind) {
		return WidgetValue{}, ErrorBadParameters
	}
	return sw.value, OK
}

func (s *Simulated) SetWidgetValue(w WidgetHandle, v WidgetValue) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, st := s.widget(w)
	if st.Failed() {
		return st
	}
	if !hasValue(sw.info.Kind) {
		return ErrorBadParameters
	}
	sw.value = v
	sw.info.Changed = true
	return OK
}

func (s *Simulated) SetWidgetChanged(w WidgetHandle, changed bool) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, st := s.widget(w)
	if st.Failed() {
		return st
	}
	sw.info.Changed = changed
	return OK
}

func (s *Simulated) WidgetRange(w WidgetHandle) (float32, float32, float32, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, st := s.widget(w)
	if st.Failed() {
		return 0, 0, 0, st
	}
	if sw.info.Kind != WidgetRange {
		return 0, 0, 0, ErrorBadParameters
	}
	return sw.min, sw.max, sw.step, OK
}

func (s *Simulated) WidgetChoices(w WidgetHandle) ([]string, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, st := s.widget(w)
	if st.Failed() {
		return nil, st
	}
	if sw.info.Kind != WidgetRadio && sw.info.Kind != WidgetMenu {
		return nil, ErrorBadParameters
	}
	return append([]string(nil), sw.choices...), OK
}

func (s *Simulated) UnrefWidget(w WidgetHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.widgets[w]
	if !ok {
		return
	}
	for _, h := range sw.root.handles {
		delete(s.widgets, h)
	}
}

func (s *Simulated) WaitForEvent(cam CameraHandle, ctx ContextHandle, timeout time.Duration) (EventTag, any, Status) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		s.mu.Lock()
		if !s.cameraOK(cam) {
			s.mu.Unlock()
			return EventUnknown, nil, ErrorBadParameters
		}
		if st, ok := s.injected("WaitForEvent"); ok {
			s.mu.Unlock()
			return EventUnknown, nil, st
		}
		if len(s.events) > 0 {
			ev := s.events[0]
			s.events = s.events[1:]
			s.mu.Unlock()
			return ev.tag, ev.payload, OK
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-deadline.C:
			return EventTimeout, nil, OK
		}
	}
}

func (s *Simulated) folder(name string) (*simFolder, Status) {
	f, ok := s.folders[path.Clean(name)]
	if !ok {
		return nil, ErrorDirectoryNotFound
	}
	return f, OK
}

func (s *Simulated) addFileLocked(folder, name string, data []byte) {
	folder = path.Clean(folder)
	f, ok := s.folders[folder]
	if !ok {
		f = &simFolder{}
		s.folders[folder] = f
		parent := path.Dir(folder)
		if pf, ok := s.folders[parent]; ok {
			pf.subfolders = append(pf.subfolders, path.Base(folder))
		}
	}
	mime := "application/octet-stream"
	if strings.HasSuffix(strings.ToUpper(name), ".JPG") {
		mime = "image/jpeg"
	}
	f.files = append(f.files, &simFile{name: name, mime: mime, data: data, mtime: time.Now()})
}

func (s *Simulated) lookupFile(folder, name string) (*simFolder, int, Status) {
	f, st := s.folder(folder)
	if st.Failed() {
		return nil, 0, st
	}
	for i, file := range f.files {
		if file.name == name {
			return f, i, OK
		}
	}
	return nil, 0, ErrorFileNotFound
}

func (s *Simulated) ListFolders(cam CameraHandle, ctx ContextHandle, folder string) ([]string, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return nil, ErrorBadParameters
	}
	if st, ok := s.injected("ListFolders"); ok {
		return nil, st
	}
	f, st := s.folder(folder)
	if st.Failed() {
		return nil, st
	}
	out := append([]string(nil), f.subfolders...)
	sort.Strings(out)
	return out, OK
}

func (s *Simulated) ListFiles(cam CameraHandle, ctx ContextHandle, folder string) ([]string, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return nil, ErrorBadParameters
	}
	if st, ok := s.injected("ListFiles"); ok {
		return nil, st
	}
	f, st := s.folder(folder)
	if st.Failed() {
		return nil, st
	}
	out := make([]string, 0, len(f.files))
	for _, file := range f.files {
		out = append(out, file.name)
	}
	return out, OK
}

func (s *Simulated) FileInfo(cam CameraHandle, ctx ContextHandle, folder, name string) (FileInfoRecord, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return FileInfoRecord{}, ErrorBadParameters
	}
	f, i, st := s.lookupFile(folder, name)
	if st.Failed() {
		return FileInfoRecord{}, st
	}
	file := f.files[i]
	return FileInfoRecord{
		Fields:      FileFieldType | FileFieldSize | FileFieldPermissions | FileFieldMtime,
		Type:        file.mime,
		Size:        uint64(len(file.data)),
		Permissions: 1<<0 | 1<<1,
		Mtime:       file.mtime.Unix(),
	}, OK
}

func (s *Simulated) GetFile(cam CameraHandle, ctx ContextHandle, folder, name string, kind FileType, w io.Writer) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return ErrorBadParameters
	}
	if st, ok := s.injected("GetFile"); ok {
		return st
	}
	f, i, st := s.lookupFile(folder, name)
	if st.Failed() {
		return st
	}
	var data []byte
	switch kind {
	case FileNormal, FileRaw:
		data = f.files[i].data
	case FilePreview:
		data = fakeJPEG(0)
	default:
		return ErrorNotSupported
	}
	if _, err := w.Write(data); err != nil {
		return ErrorIOWrite
	}
	return OK
}

func (s *Simulated) DeleteFile(cam CameraHandle, ctx ContextHandle, folder, name string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return ErrorBadParameters
	}
	f, i, st := s.lookupFile(folder, name)
	if st.Failed() {
		return st
	}
	f.files = append(f.files[:i], f.files[i+1:]...)
	return OK
}

func (s *Simulated) MakeDir(cam CameraHandle, ctx ContextHandle, parent, name string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return ErrorBadParameters
	}
	pf, st := s.folder(parent)
	if st.Failed() {
		return st
	}
	full := path.Join(path.Clean(parent), name)
	if _, ok := s.folders[full]; ok {
		return ErrorDirectoryExists
	}
	s.folders[full] = &simFolder{}
	pf.subfolders = append(pf.subfolders, name)
	return OK
}

func (s *Simulated) RemoveDir(cam CameraHandle, ctx ContextHandle, parent, name string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameraOK(cam) {
		return ErrorBadParameters
	}
	pf, st := s.folder(parent)
	if st.Failed() {
		return st
	}
	full := path.Join(path.Clean(parent), name)
	f, ok := s.folders[full]
	if !ok {
		return ErrorDirectoryNotFound
	}
	if len(f.files) > 0 || len(f.subfolders) > 0 {
		return ErrorDirectoryExists
	}
	delete(s.folders, full)
	for i, sub := range pf.subfolders {
		if sub == name {
			pf.subfolders = append(pf.subfolders[:i], pf.subfolders[i+1:]...)
			break
		}
	}
	return OK
}
