package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, topicName string, msgJson []byte) error
}

type publisherService struct {
	pubSub *gochannel.GoChannel
}

func NewPublisherService(pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		pubSub: pubSub,
	}
}

func (ps *publisherService) Publish(ctx context.Context, topicName string, msgJson []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), msgJson)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(topicName, msg)
}
