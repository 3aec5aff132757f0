package accountdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/securebank/bank-api/internal/domain"
	"github.com/securebank/bank-api/pkg/errorspkg"
	"github.com/securebank/bank-api/pkg/moneypkg"
	"github.com/securebank/bank-api/pkg/randompkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("amount", moneypkg.ValidAmount); err != nil {
			fmt.Println("registering amount validator:", err)
			os.Exit(1)
		}
	}

	os.Exit(m.Run())
}

func randomAccount() domain.Account {
	return domain.Account{
		ID:         int64(randompkg.Intn(1000) + 1),
		Number:     randompkg.AccountNumber(),
		HolderName: randompkg.HolderName(),
		Email:      randompkg.Email(),
		Balance:    randompkg.MoneyBetween(100, 10_000),
		Type:       randompkg.AccountType(),
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

type accountResponse struct {
	Data struct {
		Account domain.Account `json:"account"`
	} `json:"data"`
	Error string `json:"error"`
}

func decodeAccountResponse(t *testing.T, recorder *httptest.ResponseRecorder) accountResponse {
	t.Helper()

	var res accountResponse
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	return res
}

func compareAccounts(t *testing.T, want, got domain.Account) {
	t.Helper()

	compareTimestamps := cmpopts.EquateApproxTime(time.Second)
	if diff := cmp.Diff(want, got, compareTimestamps); diff != "" {
		t.Errorf("account mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate(t *testing.T) {
	account := randomAccount()

	type requestBody struct {
		HolderName     string `json:"holder_name"`
		Email          string `json:"email"`
		AccountType    string `json:"account_type"`
		OpeningBalance string `json:"opening_balance,omitempty"`
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
		checkData      func(res accountResponse)
	}{
		{
			name: "OK",
			requestBody: requestBody{
				HolderName:     account.HolderName,
				Email:          account.Email,
				AccountType:    account.Type,
				OpeningBalance: account.Balance.String(),
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(),
						gomock.Eq(account.HolderName),
						gomock.Eq(account.Email),
						gomock.Eq(account.Type),
						gomock.Eq(account.Balance)).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusCreated,
			checkData: func(res accountResponse) {
				compareAccounts(t, account, res.Data.Account)
			},
		},
		{
			name: "NoOpeningBalance",
			requestBody: requestBody{
				HolderName:  account.HolderName,
				Email:       account.Email,
				AccountType: account.Type,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(),
						gomock.Eq(account.HolderName),
						gomock.Eq(account.Email),
						gomock.Eq(account.Type),
						gomock.Eq(moneypkg.Zero())).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusCreated,
			checkData: func(res accountResponse) {
				compareAccounts(t, account, res.Data.Account)
			},
		},
		{
			name: "MissingHolderName",
			requestBody: requestBody{
				Email:       account.Email,
				AccountType: account.Type,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "InvalidEmail",
			requestBody: requestBody{
				HolderName:  account.HolderName,
				Email:       "not-an-email",
				AccountType: account.Type,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "InvalidOpeningBalance",
			requestBody: requestBody{
				HolderName:     account.HolderName,
				Email:          account.Email,
				AccountType:    account.Type,
				OpeningBalance: "-15.00",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "ErrAccountNumberExists",
			requestBody: requestBody{
				HolderName:     account.HolderName,
				Email:          account.Email,
				AccountType:    account.Type,
				OpeningBalance: account.Balance.String(),
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNumberExists)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrAccountNumberExists.Error(),
		},
		{
			name: "InternalServerError",
			requestBody: requestBody{
				HolderName:     account.HolderName,
				Email:          account.Email,
				AccountType:    account.Type,
				OpeningBalance: account.Balance.String(),
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.POST("/accounts", handler.Create)

			tc.buildStubs(service)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := decodeAccountResponse(t, recorder)

			if tc.wantError != "" && res.Error != tc.wantError {
				t.Errorf("res.Error=%q, want %q", res.Error, tc.wantError)
			}

			if tc.checkData != nil {
				tc.checkData(res)
			}
		})
	}
}

func TestGet(t *testing.T) {
	account := randomAccount()

	testCases := []struct {
		name           string
		uri            string
		buildStubs     func(service *MockService)
		wantStatusCode int
		checkData      func(res accountResponse)
	}{
		{
			name: "OK",
			uri:  fmt.Sprintf("/accounts/%d", account.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(account.ID)).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(res accountResponse) {
				compareAccounts(t, account, res.Data.Account)
			},
		},
		{
			name: "InvalidID",
			uri:  "/accounts/0",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "NotFound",
			uri:  fmt.Sprintf("/accounts/%d", account.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(account.ID)).
					Times(1).
					Return(domain.Account{}, &domain.AccountNotFoundError{AccountID: account.ID})
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "InternalServerError",
			uri:  fmt.Sprintf("/accounts/%d", account.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(account.ID)).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.GET("/accounts/:id", handler.Get)

			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, tc.uri, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if tc.checkData != nil {
				tc.checkData(decodeAccountResponse(t, recorder))
			}
		})
	}
}

func TestGetByNumber(t *testing.T) {
	account := randomAccount()

	testCases := []struct {
		name           string
		uri            string
		buildStubs     func(service *MockService)
		wantStatusCode int
		checkData      func(res accountResponse)
	}{
		{
			name: "OK",
			uri:  "/accounts/number/" + account.Number,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					GetByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(res accountResponse) {
				compareAccounts(t, account, res.Data.Account)
			},
		},
		{
			name: "NotFound",
			uri:  "/accounts/number/" + account.Number,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					GetByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(domain.Account{}, &domain.AccountNotFoundError{Number: account.Number})
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.GET("/accounts/number/:number", handler.GetByNumber)

			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, tc.uri, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if tc.checkData != nil {
				tc.checkData(decodeAccountResponse(t, recorder))
			}
		})
	}
}

func TestList(t *testing.T) {
	accounts := []domain.Account{randomAccount(), randomAccount(), randomAccount()}

	testCases := []struct {
		name           string
		uri            string
		buildStubs     func(service *MockService)
		wantStatusCode int
		checkData      func(got []domain.Account)
	}{
		{
			name: "OK",
			uri:  "/accounts?page_id=1&page_size=10",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(int32(10)), gomock.Eq(int32(1))).
					Times(1).
					Return(accounts, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(got []domain.Account) {
				compareTimestamps := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(accounts, got, compareTimestamps); diff != "" {
					t.Errorf("accounts mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "MissingPageID",
			uri:  "/accounts?page_size=10",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "PageSizeTooLarge",
			uri:  "/accounts?page_id=1&page_size=500",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "InternalServerError",
			uri:  "/accounts?page_id=1&page_size=10",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.GET("/accounts", handler.List)

			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, tc.uri, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if tc.checkData != nil {
				var res struct {
					Data struct {
						Accounts []domain.Account `json:"accounts"`
					} `json:"data"`
				}

				if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
					t.Fatalf("Decoding response body error: %v", err)
				}

				tc.checkData(res.Data.Accounts)
			}
		})
	}
}

func TestCount(t *testing.T) {
	testCases := []struct {
		name           string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantCount      int64
	}{
		{
			name: "OK",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Count(gomock.Any()).
					Times(1).
					Return(int64(42), nil)
			},
			wantStatusCode: http.StatusOK,
			wantCount:      42,
		},
		{
			name: "InternalServerError",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Count(gomock.Any()).
					Times(1).
					Return(int64(0), errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.GET("/accounts/count", handler.Count)

			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, "/accounts/count", nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if tc.wantStatusCode == http.StatusOK {
				var res struct {
					Data struct {
						Count int64 `json:"count"`
					} `json:"data"`
				}

				if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
					t.Fatalf("Decoding response body error: %v", err)
				}

				if res.Data.Count != tc.wantCount {
					t.Errorf("Count: got %v, want %v", res.Data.Count, tc.wantCount)
				}
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	account := randomAccount()

	type requestBody struct {
		HolderName  string `json:"holder_name"`
		Email       string `json:"email"`
		AccountType string `json:"account_type"`
	}

	testCases := []struct {
		name           string
		uri            string
		requestBody    requestBody
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			uri:  fmt.Sprintf("/accounts/%d", account.ID),
			requestBody: requestBody{
				HolderName:  account.HolderName,
				Email:       account.Email,
				AccountType: account.Type,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Update(gomock.Any(), gomock.Eq(domain.UpdateAccountParams{
						ID:         account.ID,
						HolderName: account.HolderName,
						Email:      account.Email,
						Type:       account.Type,
					})).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingEmail",
			uri:  fmt.Sprintf("/accounts/%d", account.ID),
			requestBody: requestBody{
				HolderName:  account.HolderName,
				AccountType: account.Type,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Update(gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "NotFound",
			uri:  fmt.Sprintf("/accounts/%d", account.ID),
			requestBody: requestBody{
				HolderName:  account.HolderName,
				Email:       account.Email,
				AccountType: account.Type,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Update(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, &domain.AccountNotFoundError{AccountID: account.ID})
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.PUT("/accounts/:id", handler.Update)

			tc.buildStubs(service)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPut, tc.uri, bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	account := randomAccount()

	testCases := []struct {
		name           string
		uri            string
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			uri:  fmt.Sprintf("/accounts/%d", account.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Delete(gomock.Any(), gomock.Eq(account.ID)).
					Times(1).
					Return(nil)
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "NotFound",
			uri:  fmt.Sprintf("/accounts/%d", account.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Delete(gomock.Any(), gomock.Eq(account.ID)).
					Times(1).
					Return(&domain.AccountNotFoundError{AccountID: account.ID})
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "InternalServerError",
			uri:  fmt.Sprintf("/accounts/%d", account.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Delete(gomock.Any(), gomock.Eq(account.ID)).
					Times(1).
					Return(errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.DELETE("/accounts/:id", handler.Delete)

			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodDelete, tc.uri, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}
		})
	}
}
