package apperrors

import "net/http"

// --- Auth ---

var ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)

var ErrInvalidToken = New(CodeInvalidToken, "auth", "Invalid or expired token", http.StatusUnauthorized)

var ErrMissingToken = New(CodeUnauthorized, "auth", "No token provided", http.StatusUnauthorized)

var ErrAccountInactive = New(CodeForbidden, "auth", "Account is inactive", http.StatusForbidden)

var ErrCustomersOnly = New(CodeForbidden, "auth", "Access denied. Users only.", http.StatusForbidden)

var ErrPharmaciesOnly = New(CodeForbidden, "auth", "Access denied. Pharmacies only.", http.StatusForbidden)

var ErrAccountFieldsRequired = New(CodeValidationFailed, "auth", "Name, email, and password are required", http.StatusBadRequest)

var ErrPasswordTooShort = New(CodeValidationFailed, "auth", "Password must be at least 6 characters", http.StatusBadRequest)

var ErrEmailTaken = New(CodeAlreadyExists, "auth", "Email already registered", http.StatusConflict)

// --- Orders ---

var ErrOrderNotFound = New(CodeNotFound, "order", "Order not found", http.StatusNotFound)

var ErrNotOrderOwner = New(CodeForbidden, "order", "Not authorized", http.StatusForbidden)

var ErrCannotCancel = New(CodeInvalidStatus, "order", "Cannot cancel this order", http.StatusBadRequest)

var ErrPrescriptionRequired = New(CodeValidationFailed, "order", "Prescription image is required", http.StatusBadRequest)

var ErrInvalidLocation = New(CodeValidationFailed, "order", "Latitude and longitude must be provided together and lie within range", http.StatusBadRequest)

var ErrInvalidRadius = New(CodeValidationFailed, "order", "Radius must be a positive number of kilometers", http.StatusBadRequest)

// --- Bids ---

var ErrBidNotFound = New(CodeNotFound, "bid", "Bid not found", http.StatusNotFound)

var ErrCannotBid = New(CodeInvalidStatus, "bid", "Cannot bid on this order", http.StatusBadRequest)

var ErrBidNoLongerAvailable = New(CodeInvalidStatus, "bid", "Bid is no longer available", http.StatusBadRequest)

var ErrDuplicateBid = New(CodeAlreadyExists, "bid", "Pharmacy already placed a bid on this order", http.StatusConflict)

var ErrInvalidPrice = New(CodeValidationFailed, "bid", "Price must be a positive amount", http.StatusBadRequest)

var ErrBidFieldsRequired = New(CodeValidationFailed, "bid", "Order ID and price are required", http.StatusBadRequest)

var ErrBidMessageTooLong = New(CodeValidationFailed, "bid", "Message must be at most 255 characters", http.StatusBadRequest)

var ErrOrderBusy = New(CodeConflict, "bid", "Order is being updated, please try again", http.StatusConflict)

var ErrCannotRejectAccepted = New(CodeInvalidStatus, "bid", "An accepted bid cannot be rejected", http.StatusBadRequest)

// --- Pharmacies ---

var ErrPharmacyNotFound = New(CodeNotFound, "pharmacy", "Pharmacy not found", http.StatusNotFound)

var ErrPharmacyLocation = New(CodeValidationFailed, "pharmacy", "Valid latitude and longitude are required", http.StatusBadRequest)

var ErrUserNotFound = New(CodeNotFound, "user", "User not found", http.StatusNotFound)

// --- Notifications ---

var ErrNotificationNotFound = New(CodeNotFound, "notification", "Notification not found", http.StatusNotFound)

// --- Uploads ---

var ErrFileTooLarge = New(CodeFileTooLarge, "upload", "File size exceeds the allowed limit", http.StatusRequestEntityTooLarge)

var ErrInvalidFileType = New(CodeInvalidFileType, "upload", "Only image files are allowed", http.StatusUnsupportedMediaType)
