package fcm

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/aria-khodro/cargo-relay/internal/config"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

// Android notification defaults for the transport channel.
const (
	androidIcon      = "ic_small_icon"
	androidColor     = "#12163a"
	androidChannelID = "transport"
	androidSound     = "default"
)

// Provider sends multicast pushes through Firebase Cloud Messaging. Each
// tenant scope holds its own messaging client built from an independent
// credential set.
type Provider struct {
	clients map[domain.TenantScope]*messaging.Client
	log     *slog.Logger
}

func NewProvider(ctx context.Context, cfg config.FCMConfig, log *slog.Logger) (*Provider, error) {
	credentials := map[domain.TenantScope]string{
		domain.ScopeUser:      cfg.UserCredentialsFile,
		domain.ScopeCorporate: cfg.CorporateCredentialsFile,
	}
	clients := make(map[domain.TenantScope]*messaging.Client)
	for scope, file := range credentials {
		if file == "" {
			continue
		}
		app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(file))
		if err != nil {
			return nil, fmt.Errorf("fcm: init %s scope: %w", scope, err)
		}
		client, err := app.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("fcm: messaging client for %s scope: %w", scope, err)
		}
		clients[scope] = client
		log.Info("fcm - new provider - scope configured", "scope", string(scope))
	}
	return &Provider{clients: clients, log: log}, nil
}

func (p *Provider) SendMulticast(ctx context.Context, scope domain.TenantScope, msg domain.PushMessage) (domain.MulticastResult, error) {
	client, ok := p.clients[scope]
	if !ok {
		return domain.MulticastResult{}, fmt.Errorf("fcm: %w: %s", domain.ErrScopeNotConfigured, scope)
	}

	multicast := &messaging.MulticastMessage{
		Tokens: msg.Tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Icon:      androidIcon,
				Color:     androidColor,
				ChannelID: androidChannelID,
				Tag:       msg.Tag,
				Sound:     androidSound,
			},
		},
	}

	batch, err := client.SendEachForMulticast(ctx, multicast)
	if err != nil {
		return domain.MulticastResult{}, fmt.Errorf("fcm: multicast send: %w", err)
	}

	result := domain.MulticastResult{
		Responses: make([]domain.ProviderResponse, len(batch.Responses)),
	}
	for i, resp := range batch.Responses {
		result.Responses[i].Success = resp.Success
		if resp.Error != nil {
			result.Responses[i].Error = resp.Error.Error()
		}
	}
	return result, nil
}
