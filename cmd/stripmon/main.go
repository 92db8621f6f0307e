package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	fx "github.com/robotalks/strip.go/pkg/framework"
	"github.com/robotalks/strip.go/pkg/l1/bridge"
	"github.com/robotalks/strip.go/pkg/l1/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/strip/"
)

func init() {
	if val := os.Getenv("STRIP_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/meta"):
			if len(payload) == 0 {
				log.Printf("%s: offline", topic)
				return
			}
			var meta bridge.Meta
			if err := json.Unmarshal(payload, &meta); err != nil {
				log.Printf("%s: bad meta: %v", topic, err)
				return
			}
			log.Printf("%s: %s on %s (firmware %s, max %d LEDs)",
				topic, meta.Description, meta.Port, meta.Version, meta.MaxLEDs)
		case strings.HasSuffix(topic, "/reply"):
			var r bridge.Reply
			if err := json.Unmarshal(payload, &r); err != nil {
				log.Printf("%s: bad reply: %v", topic, err)
				return
			}
			if r.OK {
				log.Printf("%s: [%s] %s ok", topic, r.ID, r.Op)
			} else {
				log.Printf("%s: [%s] %s failed (%s): %s", topic, r.ID, r.Op, r.Kind, r.Error)
			}
		default:
			log.Printf("%s: %s", topic, string(payload))
		}
	}))
	monitor := fx.RunFunc(func(ctx context.Context) error {
		if token := q.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		<-ctx.Done()
		return q.Close()
	})
	if err := fx.NewRunner().HandleSignals().Go(monitor).Wait(); err != nil {
		log.Fatalln(err)
	}
}
