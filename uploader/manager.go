// Package uploader is the upload manager behind the upload page: the file selection,
// the previews derived from it, the submit state machine and response normalization.
//
// Every event is applied under one mutex, so callbacks from HTTP handlers, the CLI and
// request completions interleave as if on a single thread. The only suspension point
// is the upload request itself, which runs outside the lock on a snapshot of the
// selection.
package uploader

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/moyoez/deeddesk-go/preview"
	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/transfer"
	"github.com/moyoez/deeddesk-go/types"
)

const tracerName = "github.com/moyoez/deeddesk-go/uploader"

// Sender issues the multipart request for one submit.
type Sender interface {
	Send(ctx context.Context, uploadURL string, files []types.RawFile, fields map[string]string) (*types.RawResponse, error)
}

type Options struct {
	BaseURL    string
	Endpoint   string
	Handles    HandleSource // defaults to a preview.Registry with preview:// handles
	Sender     Sender       // defaults to transfer.NewClient(nil)
	FormFields map[string]string
	Hub        types.NotifyHub
	OnSettled  func(receipt types.UploadReceipt)
	Metrics    *Metrics
}

// Manager owns the selection, the previews and the submit controller.
type Manager struct {
	mu         sync.Mutex
	selection  Selection
	deriver    *Deriver
	controller *Controller
	closed     bool

	baseURL   string
	endpoint  string
	uploadURL string
	fields    map[string]string

	sender      Sender
	hub         types.NotifyHub
	onSettled   func(types.UploadReceipt)
	metrics     *Metrics
	tracer      trace.Tracer
	lastReceipt string
	inflight    sync.WaitGroup
}

// submitJob is what a submit carries out of the lock.
type submitJob struct {
	id         string
	url        string
	files      []types.RawFile
	fields     map[string]string
	totalBytes int64
	startedAt  time.Time
}

func New(opts Options) *Manager {
	handles := opts.Handles
	if handles == nil {
		handles = preview.NewRegistry("")
	}
	sender := opts.Sender
	if sender == nil {
		sender = transfer.NewClient(nil)
	}
	fields := make(map[string]string, len(opts.FormFields))
	maps.Copy(fields, opts.FormFields)

	m := &Manager{
		deriver:    NewDeriver(handles),
		controller: NewController(),
		fields:     fields,
		sender:     sender,
		hub:        opts.Hub,
		onSettled:  opts.OnSettled,
		metrics:    opts.Metrics,
		tracer:     otel.Tracer(tracerName),
	}
	m.deriver.onLiveChange = m.metrics.setLive
	m.setEndpointLocked(opts.BaseURL, opts.Endpoint)
	m.recomputeLocked()
	return m
}

// AddFiles appends the image files among candidates. Non-images are dropped silently;
// when nothing survives the store and previews are left untouched.
func (m *Manager) AddFiles(candidates []types.RawFile) int {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0
	}
	added, dropped := m.selection.Add(candidates)
	if dropped > 0 {
		tool.DefaultLogger.Debugf("Dropped %d non-image file(s) from selection", dropped)
	}
	if added == 0 {
		m.mu.Unlock()
		return 0
	}
	m.recomputeLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	tool.DefaultLogger.Infof("Added %d file(s), %d selected", added, snap.FileCount)
	m.notifyState(snap)
	return added
}

// RemoveAt removes the file at index; out of range is a no-op.
func (m *Manager) RemoveAt(index int) bool {
	m.mu.Lock()
	if m.closed || !m.selection.RemoveAt(index) {
		m.mu.Unlock()
		return false
	}
	m.recomputeLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyState(snap)
	return true
}

// Clear empties the selection. The submit state is left as it is.
func (m *Manager) Clear() {
	m.mu.Lock()
	if m.closed || !m.selection.Clear() {
		m.mu.Unlock()
		return
	}
	m.recomputeLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyState(snap)
}

// Reset clears the selection and, unless an upload is in flight, returns the controller to Idle.
func (m *Manager) Reset() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.selection.Clear() {
		m.recomputeLocked()
	}
	m.controller.Reset()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyState(snap)
}

// SetEndpoint recomputes the upload URL from a new base and endpoint path.
func (m *Manager) SetEndpoint(baseURL, endpoint string) string {
	m.mu.Lock()
	m.setEndpointLocked(baseURL, endpoint)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyState(snap)
	return snap.UploadURL
}

// SetFormFields replaces the extra form fields sent with the next submit.
func (m *Manager) SetFormFields(fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields = maps.Clone(fields)
	if m.fields == nil {
		m.fields = map[string]string{}
	}
}

func (m *Manager) UploadURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploadURL
}

func (m *Manager) Files() []types.RawFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selection.Files()
}

func (m *Manager) Previews() []types.PreviewDescriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deriver.Previews()
}

func (m *Manager) State() types.SubmitState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controller.State()
}

// LiveHandles is the number of preview handles the manager currently owns.
func (m *Manager) LiveHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deriver.Live()
}

func (m *Manager) Snapshot() types.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Submit sends the current selection and blocks until the request settles.
// Rejections (nothing selected, already uploading, closed) return at once with no request issued.
// Cancelling ctx does not abort a request that was issued.
func (m *Manager) Submit(ctx context.Context) types.SubmitResult {
	job, res := m.begin()
	if job == nil {
		return res
	}
	return m.run(context.WithoutCancel(ctx), job)
}

// StartSubmit is Submit without waiting: it returns Uploading once the request is issued.
func (m *Manager) StartSubmit(ctx context.Context) types.SubmitResult {
	job, res := m.begin()
	if job == nil {
		return res
	}
	go m.run(context.WithoutCancel(ctx), job)
	return res
}

// Wait blocks until no request is in flight.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

// Close releases every preview handle. It is safe to call more than once and is
// meant to be deferred by whoever created the manager.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.deriver.Close()
	tool.DefaultLogger.Debugf("Upload manager closed, preview handles released")
}

func (m *Manager) begin() (*submitJob, types.SubmitResult) {
	m.mu.Lock()
	if m.closed {
		state := m.controller.State()
		m.mu.Unlock()
		m.metrics.observeRejected(types.ReasonClosed)
		return nil, types.SubmitResult{State: state, Reason: types.ReasonClosed, Message: ErrClosed.Error()}
	}

	if err := m.controller.Begin(m.selection.Len()); err != nil {
		reason := ReasonFor(err)
		snap := m.snapshotLocked()
		m.mu.Unlock()

		m.metrics.observeRejected(reason)
		tool.DefaultLogger.Debugf("Submit rejected: %v", err)
		if reason == types.ReasonValidation {
			m.notifyState(snap)
		}
		return nil, types.SubmitResult{State: snap.State, Reason: reason, Message: err.Error()}
	}

	job := &submitJob{
		id:         tool.GenerateRandomUUID(),
		url:        m.uploadURL,
		files:      m.selection.Files(),
		fields:     maps.Clone(m.fields),
		totalBytes: m.selection.TotalSize(),
		startedAt:  time.Now(),
	}
	m.inflight.Add(1)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	tool.DefaultLogger.Infof("Uploading %d file(s) (%s) to %s", len(job.files), tool.FormatBytes(job.totalBytes), job.url)
	m.notify(types.NotifyTypeUploadStart, "Upload Started", fmt.Sprintf("%d file(s) to %s", len(job.files), job.url), map[string]any{
		"receiptId":  job.id,
		"totalFiles": len(job.files),
		"totalSize":  job.totalBytes,
	})
	m.notifyState(snap)
	return job, types.SubmitResult{State: snap.State, ReceiptID: job.id}
}

func (m *Manager) run(ctx context.Context, job *submitJob) types.SubmitResult {
	defer m.inflight.Done()

	ctx, span := m.tracer.Start(ctx, "uploader.Submit", trace.WithAttributes(
		attribute.String("upload.url", job.url),
		attribute.Int("upload.files", len(job.files)),
		attribute.Int64("upload.bytes", job.totalBytes),
	))
	defer span.End()

	resp, err := m.sender.Send(ctx, job.url, job.files, job.fields)
	out := settle(resp, err)
	finishedAt := time.Now()

	receipt := types.UploadReceipt{
		ID:         job.id,
		UploadURL:  job.url,
		FileCount:  len(job.files),
		TotalBytes: job.totalBytes,
		Outcome:    out.state.Phase,
		Reason:     out.reason,
		Message:    out.state.Message,
		Detail:     out.detail,
		Payload:    out.state.Payload,
		StartedAt:  job.startedAt,
		FinishedAt: finishedAt,
	}
	if resp != nil {
		receipt.StatusCode = resp.StatusCode
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}
	if out.state.Payload != nil {
		receipt.Summary = Summarize(*out.state.Payload)
	}

	if out.reason != types.ReasonNone {
		span.SetStatus(codes.Error, out.state.Message)
		tool.DefaultLogger.Warnf("Upload %s failed (%s): %s [%s]", job.id, out.reason, out.state.Message, out.detail)
	} else {
		tool.DefaultLogger.Infof("Upload %s succeeded in %s", job.id, finishedAt.Sub(job.startedAt).Round(time.Millisecond))
	}

	m.mu.Lock()
	m.controller.Settle(out.state)
	m.lastReceipt = job.id
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.metrics.observeSettled(out.state.Phase, out.reason, finishedAt.Sub(job.startedAt))
	if m.onSettled != nil {
		m.onSettled(receipt)
	}
	m.notify(types.NotifyTypeUploadEnd, "Upload "+string(out.state.Phase), out.state.Message, map[string]any{
		"receipt": receipt,
	})
	m.notifyState(snap)

	return types.SubmitResult{State: out.state, Reason: out.reason, Message: out.state.Message, ReceiptID: job.id}
}

func (m *Manager) setEndpointLocked(baseURL, endpoint string) {
	m.baseURL = baseURL
	m.endpoint = endpoint
	m.uploadURL = tool.BuildUploadURL(baseURL, endpoint)
}

func (m *Manager) recomputeLocked() {
	m.deriver.Derive(m.selection.Files(), m.selection.Version())
	m.metrics.setSelected(m.selection.Len())
}

func (m *Manager) snapshotLocked() types.Snapshot {
	state := m.controller.State()
	total := m.selection.TotalSize()
	snap := types.Snapshot{
		Previews:          m.deriver.Previews(),
		FileCount:         m.selection.Len(),
		TotalSize:         total,
		TotalSizeText:     tool.FormatBytes(total),
		State:             state,
		ValidationMessage: m.controller.Validation(),
		UploadURL:         m.uploadURL,
		CanSubmit:         !m.closed && state.Phase != types.PhaseUploading && m.selection.Len() > 0,
		LastReceiptID:     m.lastReceipt,
	}
	if state.Payload != nil {
		snap.PayloadText = state.Payload.Display()
	}
	return snap
}

func (m *Manager) notifyState(snap types.Snapshot) {
	m.notify(types.NotifyTypeStateChanged, "State Changed", string(snap.State.Phase), map[string]any{
		"snapshot": snap,
	})
}

func (m *Manager) notify(kind, title, message string, data map[string]any) {
	if m.hub == nil {
		return
	}
	m.hub.Broadcast(&types.Notification{
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    data,
	})
}
