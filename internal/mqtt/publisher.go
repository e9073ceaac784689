package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode"

	"weather-panel/internal/weather"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Println("MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		enabled:     true,
	}, nil
}

// Publish sends each reading of the snapshot to its own topic and the full
// snapshot as a retained JSON status message.
func (p *Publisher) Publish(snapshot *weather.Snapshot) error {
	if !p.enabled || snapshot == nil {
		return nil
	}

	for topic, payload := range readingTopics(p.topicPrefix, snapshot) {
		token := p.client.Publish(topic, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("Failed to publish to %s: %v", topic, token.Error())
		}
	}

	statusJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	token := p.client.Publish(statusTopic(p.topicPrefix, snapshot), 0, true, statusJSON)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish status: %w", token.Error())
	}

	return nil
}

// PublishHomeAssistantDiscovery announces one sensor per reading for place.
func (p *Publisher) PublishHomeAssistantDiscovery(place string, unit weather.Unit) error {
	if !p.enabled {
		return nil
	}

	for topic, config := range discoveryConfigs(p.topicPrefix, place, unit) {
		payload, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal discovery config: %w", err)
		}
		token := p.client.Publish(topic, 0, true, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("Failed to publish discovery to %s: %v", topic, token.Error())
		}
	}

	return nil
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}

func readingTopics(prefix string, s *weather.Snapshot) map[string]string {
	base := fmt.Sprintf("%s/%s", prefix, slug(placeName(s)))
	topics := map[string]string{
		base + "/condition":   string(s.Symbol()),
		base + "/description": s.Description,
	}

	readings := map[string]*float64{
		"temperature": s.Temp,
		"feels_like":  s.FeelsLike,
		"humidity":    s.Humidity,
		"pressure":    s.Pressure,
		"wind_speed":  s.WindSpeed,
	}
	for name, value := range readings {
		if value == nil {
			continue
		}
		topics[base+"/"+name] = strconv.FormatFloat(*value, 'f', -1, 64)
	}
	return topics
}

func statusTopic(prefix string, s *weather.Snapshot) string {
	return fmt.Sprintf("%s/%s/status", prefix, slug(placeName(s)))
}

func discoveryConfigs(prefix, place string, unit weather.Unit) map[string]map[string]interface{} {
	id := slug(place)
	sensors := []struct {
		Name        string
		ID          string
		Unit        string
		DeviceClass string
	}{
		{"Temperature", "temperature", "°" + unit.TemperatureSuffix(), "temperature"},
		{"Feels Like", "feels_like", "°" + unit.TemperatureSuffix(), "temperature"},
		{"Humidity", "humidity", "%", "humidity"},
		{"Pressure", "pressure", "hPa", "atmospheric_pressure"},
		{"Wind Speed", "wind_speed", unit.SpeedSuffix(), "wind_speed"},
		{"Condition", "condition", "", ""},
	}

	configs := make(map[string]map[string]interface{}, len(sensors))
	for _, sensor := range sensors {
		topic := fmt.Sprintf("homeassistant/sensor/weather_panel_%s/%s/config", id, sensor.ID)

		config := map[string]interface{}{
			"name":        fmt.Sprintf("%s %s", place, sensor.Name),
			"unique_id":   fmt.Sprintf("weather_panel_%s_%s", id, sensor.ID),
			"state_topic": fmt.Sprintf("%s/%s/%s", prefix, id, sensor.ID),
			"device": map[string]interface{}{
				"identifiers":  []string{"weather_panel_" + id},
				"name":         "Weather " + place,
				"manufacturer": "weather-panel",
			},
		}
		if sensor.Unit != "" {
			config["unit_of_measurement"] = sensor.Unit
		}
		if sensor.DeviceClass != "" {
			config["device_class"] = sensor.DeviceClass
		}
		configs[topic] = config
	}
	return configs
}

func placeName(s *weather.Snapshot) string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return s.Place
}

// slug turns a place name into a single MQTT topic level.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}
