package notification

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nikoksr/notify"

	"f1lapdata/pkg/caster"
	"f1lapdata/pkg/collector"
	"f1lapdata/pkg/model"
	"f1lapdata/pkg/pubsub"
)

// Manager listens for finished collection runs and pushes a summary to the
// configured Telegram chat. With no token configured it stays quiet.
type Manager struct {
	ctx          context.Context
	token        string
	chatID       int64
	pubsubMgr    *pubsub.PubSub[string]
	resultCaster caster.ChannelCaster[model.RunResult]
}

func NewManager(ctx context.Context, token string, chatID int64, pubsubMgr *pubsub.PubSub[string]) *Manager {
	return &Manager{
		ctx:          ctx,
		token:        token,
		chatID:       chatID,
		pubsubMgr:    pubsubMgr,
		resultCaster: caster.JSONChannelCaster[model.RunResult]{},
	}
}

func (m *Manager) Enabled() bool {
	return m.token != "" && m.chatID != 0
}

func (m *Manager) Start(exitChan <-chan bool) {
	finishedChan := m.pubsubMgr.Subscribe(collector.PubSubRunFinishedTopic)
	for {
		select {
		case <-exitChan:
			return
		case payload := <-finishedChan:
			result, err := m.resultCaster.From(payload)
			if err != nil {
				log.Printf("Error casting run result from json: %s", err.Error())
				continue
			}
			if !m.Enabled() {
				continue
			}
			log.Printf("Sending run notification to telegram chat %d\n", m.chatID)
			if err := m.sendNotification(result); err != nil {
				log.Printf("Error notifying run result: %s", err.Error())
			}
		}
	}
}

func (m *Manager) sendNotification(result model.RunResult) error {
	bot, err := tgbotapi.NewBotAPI(m.token)
	if err != nil {
		return err
	}

	tg := Telegram{}
	tg.SetClient(bot)
	tg.AddReceivers(m.chatID)

	n := notify.NewWithServices(tg)
	return n.Send(m.ctx, "Collection run finished:", result.String())
}
