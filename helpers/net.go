package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
)

var DEFAULT_UA = "Warden/1.0 (https://github.com/Seklfreak/Warden)"

func newPesterClient() *pester.Client {
	client := pester.New()
	client.Timeout = 15 * time.Second
	client.MaxRetries = 3
	client.Backoff = pester.ExponentialBackoff
	return client
}

// NetGetUAWithError performs a GET request with a custom user-agent
func NetGetUAWithError(url string, useragent string) ([]byte, error) {
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", useragent)

	response, err := newPesterClient().Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return nil, errors.New("expected status 200; got " + strconv.Itoa(response.StatusCode))
	}

	buf := bytes.NewBuffer(nil)
	_, err = io.Copy(buf, response.Body)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// NetGet executes a GET request to url with the default user-agent
func NetGet(url string) ([]byte, error) {
	return NetGetUAWithError(url, DEFAULT_UA)
}

// NetGetJSONIgnoreStatus performs a GET request and decodes the body into
// $target regardless of the response status code. Some APIs (the invite
// lookup among them) return a JSON body together with a 404.
func NetGetJSONIgnoreStatus(url string, target interface{}) error {
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	request.Header.Set("User-Agent", DEFAULT_UA)

	response, err := newPesterClient().Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, target)
}

// NetPostJSON marshals $payload and POSTs it to $url
func NetPostJSON(url string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	request, err := http.NewRequest("POST", url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	request.Header.Set("User-Agent", DEFAULT_UA)
	request.Header.Set("Content-Type", "application/json")

	response, err := newPesterClient().Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return errors.New("expected 2xx status; got " + strconv.Itoa(response.StatusCode))
	}

	return nil
}

// NetGetJSON performs a GET request and decodes the JSON body into $target
func NetGetJSON(url string, target interface{}) error {
	body, err := NetGet(url)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, target)
}

// NetDelete performs a DELETE request to $url
func NetDelete(url string) error {
	request, err := http.NewRequest("DELETE", url, nil)
	if err != nil {
		return err
	}
	request.Header.Set("User-Agent", DEFAULT_UA)

	response, err := newPesterClient().Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	// 404 on delete means the record is already gone, which is fine
	if response.StatusCode != 404 && (response.StatusCode < 200 || response.StatusCode > 299) {
		return errors.New("expected 2xx status; got " + strconv.Itoa(response.StatusCode))
	}

	return nil
}
