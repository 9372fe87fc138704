package livetiming

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"f1lapdata/pkg/pubsub"
)

const PubSubFramesTopic = "livetiming-frames"

// Recorder appends the raw timing stream to a file, one message per line.
// It does not parse or ingest the frames; recordings are replayed by other
// tooling.
type Recorder struct {
	url       string
	dir       string
	pubsubMgr *pubsub.PubSub[string]
}

func NewRecorder(url, dir string, pubsubMgr *pubsub.PubSub[string]) *Recorder {
	return &Recorder{
		url:       url,
		dir:       dir,
		pubsubMgr: pubsubMgr,
	}
}

// Record connects to the timing stream and writes every message it receives
// until the context is cancelled or the stream closes. It returns the path
// of the recording file.
func (r *Recorder) Record(ctx context.Context) (string, error) {
	streamURL := r.url
	if strings.HasPrefix(streamURL, "https://") {
		streamURL = "wss://" + strings.TrimPrefix(streamURL, "https://")
	} else if strings.HasPrefix(streamURL, "http://") {
		streamURL = "ws://" + strings.TrimPrefix(streamURL, "http://")
	}

	dealer := &websocket.Dialer{
		HandshakeTimeout:  10 * time.Second,
		EnableCompression: true,
	}
	c, _, err := dealer.Dial(streamURL, nil)
	if err != nil {
		log.Printf("Error connecting to %s: %s", streamURL, err.Error())
		return "", err
	}
	defer c.Close()
	log.Printf("connected to %s", streamURL)

	fileName := filepath.Join(r.dir, fmt.Sprintf("livetiming_%s.txt", time.Now().Format("20060102_150405")))
	f, err := os.Create(fileName)
	if err != nil {
		return "", errors.Wrapf(err, "creating recording file %s", fileName)
	}
	defer f.Close()

	doneErr := make(chan error, 1)
	messageChan := make(chan []byte, 1)

	go func() {
		defer close(doneErr)
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				doneErr <- err
				return
			}
			messageChan <- data
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return fileName, nil
		case err := <-doneErr:
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return fileName, nil
			}
			log.Println("read error:", err)
			return fileName, err
		case data := <-messageChan:
			if _, err := f.Write(append(data, '\n')); err != nil {
				return fileName, errors.Wrapf(err, "writing recording file %s", fileName)
			}
			if r.pubsubMgr != nil {
				r.pubsubMgr.PublishCtx(ctx, PubSubFramesTopic, string(data))
			}
		}
	}
}
