package analysispool

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"fflogs_phase_ranker/share"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var (
	errInvalidRequest = errors.New("analysispool: invalid request")

	websockEmptyClosure = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")

	bufPool = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 0, 16*1024))
		},
	}
)

// Do serves one websocket client: it reads the request, waits for its turn in the queue
// and sends the rendered result. ws is closed on return.
func (p *Pool) Do(ctx context.Context, ws *websocket.Conn) {
	ctx, ctxCancel := context.WithCancel(ctx)
	defer ctxCancel()
	defer ws.Close()

	err := ws.WriteMessage(websocket.TextMessage, eventReady)
	if err != nil {
		share.CaptureError(errors.WithStack(err))
		return
	}

	q := queueData{
		ws:         ws,
		ctx:        ctx,
		ctxCancel:  ctxCancel,
		chanResult: make(chan bool, 1),
	}

	err = ws.ReadJSON(&q.reqData)
	if err != nil {
		share.CaptureError(errors.WithStack(err))
		return
	}
	go func() {
		for {
			_, r, err := ws.NextReader()
			if err != nil {
				ctxCancel()
				return
			}

			_, err = io.Copy(io.Discard, r)
			if err != nil && err != io.EOF {
				return
			}
		}
	}()

	if !q.reqData.Validate() {
		q.Fail(errInvalidRequest)
		q.Close()
		return
	}

	////////////////////////////////////////////////////////////////////////////////////////////////////

	h := q.reqData.Hash()

	var html string
	if p.opt.Cache != nil && p.opt.Cache.Load(h, &html) {
		q.Succ(html)
	} else {
		go func() {
			ticker := time.NewTicker(5 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					err := ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second))
					if err != nil {
						if err != websocket.ErrCloseSent {
							share.CaptureError(errors.WithStack(err))
						}
						ctxCancel()
						return
					}

				case <-ctx.Done():
					return
				}
			}
		}()

		q.buf = bufPool.Get().(*bytes.Buffer)
		q.buf.Reset()

		p.enqueue(&q)

		select {
		case <-ctx.Done():
			// the worker may still be writing to q.buf; it is not returned to the pool
			return
		case ok := <-q.chanResult:
			if ok {
				html = q.buf.String()
				if p.opt.Cache != nil {
					p.opt.Cache.Save(h, html)
				}
				q.Succ(html)
			}
			bufPool.Put(q.buf)
		}
	}

	q.Close()
}

// Close says goodbye to the client.
func (q *queueData) Close() {
	time.Sleep(time.Second)

	q.msgLock.Lock()
	defer q.msgLock.Unlock()

	err := q.ws.WriteMessage(websocket.CloseMessage, websockEmptyClosure)
	if err != nil && err != websocket.ErrCloseSent {
		share.CaptureError(errors.WithStack(err))
	}
}
