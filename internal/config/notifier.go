package config

import (
	"os"
	"time"
)

const (
	expoEndpointEnv          = "EXPO_PUSH_ENDPOINT"
	expoAccessTokenEnv       = "EXPO_ACCESS_TOKEN"
	expoMaxRequestsPerSecEnv = "EXPO_MAX_REQUESTS_PER_SECOND"
	expoTimeoutEnv           = "EXPO_TIMEOUT"

	gcloudProjectIDEnv    = "GCLOUD_PROJECT_ID"
	gcloudLocationIDEnv   = "GCLOUD_LOCATION_ID"
	gcloudQueueIDEnv      = "GCLOUD_QUEUE_ID"
	gcloudTargetURLEnv    = "GCLOUD_TARGET_URL"
	cloudTasksEndpointEnv = "CLOUD_TASKS_ENDPOINT"
	gcloudServiceAcctEnv  = "GCLOUD_SERVICE_ACCOUNT_EMAIL"

	defaultExpoEndpoint          = "https://exp.host/--/api/v2/push/send"
	defaultExpoMaxRequestsPerSec = 100
	defaultExpoTimeout           = 15 * time.Second
)

type NotifierConfig struct {
	ExpoEndpoint             string
	ExpoAccessToken          string
	ExpoMaxRequestsPerSecond int
	ExpoTimeout              time.Duration

	GCloudProjectID    string
	GCloudLocationID   string
	GCloudQueueID      string
	GCloudTargetURL    string
	CloudTasksEndpoint string
	// GCloudServiceAccount signs OIDC tokens on enqueued tasks.
	GCloudServiceAccount string
}

func LoadNotifierConfig() (*NotifierConfig, error) {
	endpoint := os.Getenv(expoEndpointEnv)
	if endpoint == "" {
		endpoint = defaultExpoEndpoint
	}

	rps, err := intFromEnv(expoMaxRequestsPerSecEnv, defaultExpoMaxRequestsPerSec)
	if err != nil {
		return nil, err
	}

	timeout, err := durationFromEnv(expoTimeoutEnv, defaultExpoTimeout)
	if err != nil {
		return nil, err
	}

	projectID := os.Getenv(gcloudProjectIDEnv)
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}

	return &NotifierConfig{
		ExpoEndpoint:             endpoint,
		ExpoAccessToken:          os.Getenv(expoAccessTokenEnv),
		ExpoMaxRequestsPerSecond: rps,
		ExpoTimeout:              timeout,

		GCloudProjectID:    projectID,
		GCloudLocationID:   os.Getenv(gcloudLocationIDEnv),
		GCloudQueueID:      os.Getenv(gcloudQueueIDEnv),
		GCloudTargetURL:    os.Getenv(gcloudTargetURLEnv),
		CloudTasksEndpoint: os.Getenv(cloudTasksEndpointEnv),

		GCloudServiceAccount: os.Getenv(gcloudServiceAcctEnv),
	}, nil
}
