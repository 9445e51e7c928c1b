package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// KeyRateClient получает ключевую ставку регулятора из SOAP-сервиса.
// Ставка используется для ценообразования кредитных заявок без явной ставки.
type KeyRateClient struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewKeyRateClient(url string, logger *logrus.Logger) *KeyRateClient {
	return &KeyRateClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// buildKeyRateRequest формирует SOAP-запрос ключевой ставки за последние 30 дней
func buildKeyRateRequest() string {
	fromDate := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	toDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
        <soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
            <soap12:Body>
                <KeyRate xmlns="http://web.cbr.ru/">
                    <fromDate>%s</fromDate>
                    <ToDate>%s</ToDate>
                </KeyRate>
            </soap12:Body>
        </soap12:Envelope>`, fromDate, toDate)
}

func (c *KeyRateClient) sendRequest(ctx context.Context, soapRequest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(soapRequest))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении HTTP-запроса: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении ответа: %w", err)
	}

	return rawBody, nil
}

// parseKeyRateResponse извлекает последнее значение ставки из XML-ответа
func parseKeyRateResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("ошибка при разборе XML: %w", err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return 0, errors.New("данные по ключевой ставке не найдены")
	}

	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return 0, errors.New("элемент <Rate> отсутствует в XML-ответе")
	}

	rate, err := strconv.ParseFloat(rateElement.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("ошибка при преобразовании ставки: %w", err)
	}

	return rate, nil
}

// GetKeyRate возвращает актуальную ключевую ставку регулятора
func (c *KeyRateClient) GetKeyRate(ctx context.Context) (float64, error) {
	c.logger.Debug("Запрос ключевой ставки у регулятора")

	rawBody, err := c.sendRequest(ctx, buildKeyRateRequest())
	if err != nil {
		c.logger.WithError(err).Error("Ошибка при запросе ключевой ставки")
		return 0, err
	}

	rate, err := parseKeyRateResponse(rawBody)
	if err != nil {
		c.logger.WithError(err).Error("Ошибка при разборе ответа регулятора")
		return 0, err
	}

	c.logger.WithField("key_rate", rate).Info("Ключевая ставка успешно получена")
	return rate, nil
}
