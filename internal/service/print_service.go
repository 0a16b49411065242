// internal/service/print_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/config"
	"label-service/internal/convert"
	"label-service/internal/imageio"
	"label-service/internal/model"
	"label-service/internal/protocol"
	"label-service/internal/raster"
	"label-service/internal/utils"
)

var (
	// ErrNoPrinter is returned when no printer URI is given or configured
	ErrNoPrinter = errors.New("no printer configured")
	// ErrTransport wraps every failure to reach or talk to the printer
	ErrTransport = errors.New("printer transport failed")
)

// PrintRequest describes one job. Empty fields fall back to the printer
// and conversion config.
type PrintRequest struct {
	Model   string
	Label   string
	URI     string
	Images  []image.Image
	Options *convert.Options
}

// PrintService converts images and delivers them to a printer
type PrintService struct {
	converter *convert.Converter
	catalog   *catalog.Registry
	config    *config.Config
	logger    *utils.ServiceLogger
	connect   func(uri string) (protocol.DeviceProtocol, error)

	// one job at a time per service, the printer has a single buffer
	mu sync.Mutex
}

// NewPrintService creates a new print service instance
func NewPrintService(
	converter *convert.Converter,
	registry *catalog.Registry,
	cfg *config.Config,
	logger *zap.Logger,
) *PrintService {
	ps := &PrintService{
		converter: converter,
		catalog:   registry,
		config:    cfg,
		logger:    utils.NewServiceLogger(logger, "print-service"),
	}
	ps.connect = func(uri string) (protocol.DeviceProtocol, error) {
		return protocol.FromURI(uri, protocol.Timeouts{
			Connect: cfg.Printer.ConnectTimeout,
			Write:   cfg.Printer.WriteTimeout,
			Read:    cfg.Printer.ReadTimeout,
		}, ps.logger.Logger)
	}
	return ps
}

// DefaultOptions returns the conversion options from config
func (ps *PrintService) DefaultOptions() (convert.Options, error) {
	return convert.OptionsFromConfig(&ps.config.Conversion, ps.config.Printer.Strict)
}

func (ps *PrintService) buildRequest(req *PrintRequest) (convert.Request, error) {
	out := convert.Request{
		Model:  req.Model,
		Label:  req.Label,
		Images: req.Images,
	}
	if out.Model == "" {
		out.Model = ps.config.Printer.Model
	}
	if out.Label == "" {
		out.Label = ps.config.Printer.Label
	}

	if req.Options != nil {
		out.Options = *req.Options
		return out, nil
	}
	opts, err := ps.DefaultOptions()
	if err != nil {
		return out, err
	}
	out.Options = opts
	return out, nil
}

// Convert runs the conversion only and returns the instruction stream
func (ps *PrintService) Convert(ctx context.Context, req *PrintRequest) (*model.Job, []byte, error) {
	convReq, err := ps.buildRequest(req)
	if err != nil {
		return nil, nil, err
	}

	job := model.NewJob(model.JobTypeConvert, convReq.Model, convReq.Label, len(convReq.Images))
	jobLogger := utils.NewJobLogger(ps.logger.Logger, string(job.Type), job.ID.String())
	jobLogger.Start(
		zap.String("model", job.Model),
		zap.String("label", job.Label),
		zap.Int("images", job.Images),
	)

	result, err := ps.runConversion(ctx, job, convReq)
	if err != nil {
		job.Complete(err)
		jobLogger.Error(err)
		return job, nil, err
	}

	job.Complete(nil)
	jobLogger.Success(zap.Int("bytes", job.Bytes), zap.Int("pages", job.Pages))
	return job, result.Data, nil
}

// Print converts the images and sends the job to the printer
func (ps *PrintService) Print(ctx context.Context, req *PrintRequest) (*model.Job, error) {
	convReq, err := ps.buildRequest(req)
	if err != nil {
		return nil, err
	}

	uri := req.URI
	if uri == "" {
		uri = ps.config.Printer.URI
	}
	if uri == "" {
		return nil, ErrNoPrinter
	}

	job := model.NewJob(model.JobTypePrint, convReq.Model, convReq.Label, len(convReq.Images))
	job.Target = uri
	jobLogger := utils.NewJobLogger(ps.logger.Logger, string(job.Type), job.ID.String())
	jobLogger.Start(
		zap.String("model", job.Model),
		zap.String("label", job.Label),
		zap.String("uri", uri),
		zap.Int("images", job.Images),
	)

	result, err := ps.runConversion(ctx, job, convReq)
	if err != nil {
		job.Complete(err)
		jobLogger.Error(err)
		return job, err
	}
	jobLogger.Progress("Job converted, sending to printer", 0.5, zap.Int("bytes", job.Bytes))

	if err := ps.send(ctx, uri, convReq.Model, result.Data); err != nil {
		job.Complete(err)
		jobLogger.Error(err)
		return job, err
	}

	job.Complete(nil)
	jobLogger.Success(zap.Int("bytes", job.Bytes), zap.Int("pages", job.Pages))
	return job, nil
}

// Preview separates the first image and renders its ink layers the way
// they would print
func (ps *PrintService) Preview(req *PrintRequest) (*image.RGBA, []string, error) {
	convReq, err := ps.buildRequest(req)
	if err != nil {
		return nil, nil, err
	}
	label, printer, opts, warnings, err := ps.converter.Prepare(convReq)
	if err != nil {
		return nil, nil, err
	}

	layers, err := ps.converter.Separate(convReq.Images[0], label, printer, opts)
	if err != nil {
		return nil, warnings, err
	}
	return imageio.Preview(layers.Black, layers.Red), warnings, nil
}

func (ps *PrintService) runConversion(ctx context.Context, job *model.Job, req convert.Request) (*convert.Result, error) {
	job.Status = model.JobStatusProcessing

	result, err := ps.converter.Convert(ctx, req)
	if err != nil {
		return nil, err
	}

	job.Pages = result.Pages
	job.Bytes = result.Bytes
	job.Rows = result.Rows
	job.Warnings = result.Warnings
	return result, nil
}

func (ps *PrintService) send(ctx context.Context, uri, modelName string, data []byte) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	conn, err := ps.connect(uri)
	if err != nil {
		return err
	}
	printerLogger := utils.NewPrinterLogger(ps.logger.Logger, modelName, string(conn.GetProtocolType()))

	if err := conn.Open(ctx); err != nil {
		printerLogger.LogConnection("open", false, err)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	printerLogger.LogConnection("open", true, nil)
	defer func() {
		if err := conn.Close(); err != nil {
			printerLogger.LogConnection("close", false, err)
		}
	}()

	start := time.Now()
	err = conn.Write(ctx, data)
	printerLogger.LogTransfer(len(data), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// Status asks the printer for its status reply. An empty uri selects the
// configured printer.
func (ps *PrintService) Status(ctx context.Context, uri string) (*model.PrinterInfo, *raster.Status, error) {
	if uri == "" {
		uri = ps.config.Printer.URI
	}
	if uri == "" {
		return nil, nil, ErrNoPrinter
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	conn, err := ps.connect(uri)
	if err != nil {
		return nil, nil, err
	}
	info := &model.PrinterInfo{
		Model:          ps.config.Printer.Model,
		URI:            uri,
		ConnectionType: conn.GetProtocolType(),
		State:          model.PrinterStateOffline,
	}

	if err := conn.Open(ctx); err != nil {
		return info, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer conn.Close()

	request, err := statusRequest(ps.config.Printer.Model)
	if err != nil {
		return info, nil, err
	}

	if err := conn.Write(ctx, request); err != nil {
		return info, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	reply, err := conn.Read(ctx, raster.StatusLength)
	if err != nil {
		return info, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	status, err := raster.ParseStatus(reply)
	if err != nil {
		return info, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	applyStatus(info, status)
	ps.logger.Info("Printer status received",
		zap.String("uri", uri),
		zap.String("state", string(info.State)),
		zap.Strings("errors", status.Errors),
	)
	return info, status, nil
}

func applyStatus(info *model.PrinterInfo, status *raster.Status) {
	info.MediaWidthMM = status.MediaWidthMM
	info.MediaLengthMM = status.MediaLengthMM
	info.Errors = status.Errors

	switch {
	case len(status.Errors) > 0 || status.Type == raster.StatusErrorOccurred:
		info.State = model.PrinterStateError
	case status.Type == raster.StatusTurnedOff:
		info.State = model.PrinterStateOffline
	case status.Ready():
		info.State = model.PrinterStateReady
	default:
		info.State = model.PrinterStateBusy
	}
}

// statusRequest clears any half-sent job before asking for status
func statusRequest(modelName string) ([]byte, error) {
	enc := raster.NewEncoder(catalog.PrinterModel{Name: modelName})
	for _, step := range []func() error{enc.AddInvalidate, enc.AddInitialize, enc.AddStatusRequest} {
		if err := step(); err != nil {
			return nil, fmt.Errorf("failed to build status request: %w", err)
		}
	}
	return enc.Finish()
}
