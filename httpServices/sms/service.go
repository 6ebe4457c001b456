package sms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"voting-system/logger"
)

// SMSService delivers OTP codes through an external SMS gateway. Delivery is
// fire-and-forget: an issued code stays valid even when the gateway fails.
type SMSService struct {
	httpClient *http.Client
	gatewayURL string
}

func NewSMSService() *SMSService {
	return &SMSService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		gatewayURL: os.Getenv("SMS_GATEWAY_URL"),
	}
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SendOTP sends the code to the phone number. When no gateway is configured
// the code is written to the application log instead, which keeps local
// development working without an SMS provider.
func (s *SMSService) SendOTP(phone, code string) error {
	if s.gatewayURL == "" {
		logger.Info(fmt.Sprintf("SMS gateway not configured, OTP for %s: %s", phone, code))
		return nil
	}

	body, err := json.Marshal(sendRequest{
		Phone:   phone,
		Message: fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code),
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest("POST", s.gatewayURL+"/sms/send/", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("SMS gateway returned non-OK status: " + resp.Status)
	}

	return nil
}
