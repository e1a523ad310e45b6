package analysispool

import (
	"bytes"
	"context"
	"sync"

	"fflogs_phase_ranker/analysis"
	"fflogs_phase_ranker/cache"
	"fflogs_phase_ranker/fflogs"
	"fflogs_phase_ranker/share"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options wires a Pool to its collaborators.
type Options struct {
	// NewReporter builds the reporting API client of one request.
	NewReporter func(reportID, credential string) analysis.Reporter
	Datasets    analysis.Datasets

	// Cache keeps rendered results. nil disables it.
	Cache *cache.Storage
}

// Pool ranks queued requests one at a time, in arrival order.
type Pool struct {
	opt Options

	queueLock sync.Mutex
	queue     []*queueData
	queueWake chan struct{}
}

func New(opt Options) *Pool {
	p := &Pool{
		opt:       opt,
		queue:     make([]*queueData, 0, 16),
		queueWake: make(chan struct{}, 1),
	}
	go p.queueWorker()

	return p
}

type queueData struct {
	reqData analysis.RequestData

	ws        *websocket.Conn
	ctx       context.Context
	ctxCancel func()

	buf *bytes.Buffer

	chanResult chan bool

	msgLock sync.Mutex
}

var (
	eventRespBufferPool = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 0, 16*1024))
		},
	}

	eventReady = []byte(`{"event":"ready"}`)
	eventStart = []byte(`{"event":"start"}`)
)

// enqueue appends q and tells it its position before the worker can see it.
func (p *Pool) enqueue(q *queueData) {
	p.queueLock.Lock()
	defer p.queueLock.Unlock()

	p.queue = append(p.queue, q)
	q.Reorder(len(p.queue))

	select {
	case p.queueWake <- struct{}{}:
	default:
	}
}

func (p *Pool) queueWorker() {
	var q *queueData

	for {
		q = nil

		p.queueLock.Lock()
		if len(p.queue) > 0 {
			q = p.queue[0]

			for i := 1; i < len(p.queue); i++ {
				go p.queue[i].Reorder(i)
				p.queue[i-1] = p.queue[i]
			}
			p.queue = p.queue[:len(p.queue)-1]
		}
		p.queueLock.Unlock()
		if q == nil {
			<-p.queueWake
			continue
		}

		p.process(q)
	}
}

// process ranks one dequeued request. A request whose client left while waiting is
// answered without any event.
func (p *Pool) process(q *queueData) {
	if q.ctx.Err() != nil {
		logrus.Infof("Skip: %s#%d", q.reqData.Report, q.reqData.Fight)
		q.chanResult <- false
		return
	}

	logrus.Infof("Start: %s#%d", q.reqData.Report, q.reqData.Fight)
	q.Start()

	res := p.rank(q)
	select {
	case <-q.ctx.Done():
	case q.chanResult <- res:
	}

	logrus.Infof("End: %s#%d", q.reqData.Report, q.reqData.Fight)
}

func (p *Pool) rank(q *queueData) bool {
	session := analysis.NewSession(
		p.opt.NewReporter(q.reqData.Report, q.reqData.APIKey),
		p.opt.Datasets,
	)

	fightID := q.reqData.Fight
	if fightID == 0 {
		report, err := session.Report(q.ctx)
		if err != nil {
			q.Fail(err)
			return false
		}

		fight, ok := report.LastKill()
		if !ok {
			q.Fail(errors.WithStack(analysis.ErrFightNotFound))
			return false
		}
		fightID = fight.ID
	}

	res, err := session.RankFight(q.ctx, fightID, q.reqData.Datasets, q.Progress)
	if err != nil {
		q.Fail(err)
		return false
	}

	err = renderResult(q.buf, res)
	if err != nil {
		share.CaptureError(errors.WithStack(err))
		q.Fail(err)
		return false
	}

	return true
}

func (q *queueData) MessageJson(resp interface{}) error {
	buf := eventRespBufferPool.Get().(*bytes.Buffer)
	defer eventRespBufferPool.Put(buf)

	buf.Reset()

	err := jsoniter.NewEncoder(buf).Encode(resp)
	if err != nil {
		return errors.WithStack(err)
	}

	return q.MessageBytes(buf.Bytes())
}

func (q *queueData) MessageBytes(data []byte) error {
	q.msgLock.Lock()
	defer q.msgLock.Unlock()

	return q.ws.WriteMessage(websocket.TextMessage, data)
}

// send writes one event and gives up on the client when it is gone.
func (q *queueData) send(resp interface{}) {
	var err error
	switch v := resp.(type) {
	case []byte:
		err = q.MessageBytes(v)
	default:
		err = q.MessageJson(v)
	}
	if err != nil {
		if err != websocket.ErrCloseSent {
			share.CaptureError(errors.WithStack(err))
		}
		q.ctxCancel()
	}
}

func (q *queueData) Reorder(order int) {
	q.send(&struct {
		Event string `json:"event"`
		Data  int    `json:"data"`
	}{
		Event: "waiting",
		Data:  order,
	})
}

func (q *queueData) Start() {
	q.send(eventStart)
}

func (q *queueData) Progress(s string) {
	q.send(&struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}{
		Event: "progress",
		Data:  s,
	})
}

// Fail sends the error event. Messages of the reporting API reach the client unchanged;
// anything else is reported as a generic failure.
func (q *queueData) Fail(err error) {
	msg := "analysis failed"

	var remoteErr *fflogs.RemoteError
	switch {
	case errors.As(err, &remoteErr):
		msg = remoteErr.Message
	case errors.Is(err, analysis.ErrFightNotFound):
		msg = "fight not found"
	case errors.Is(err, errInvalidRequest):
		msg = "invalid request"
	}

	q.send(&struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}{
		Event: "error",
		Data:  msg,
	})
}

func (q *queueData) Succ(html string) {
	q.send(&struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}{
		Event: "complete",
		Data:  html,
	})
}
