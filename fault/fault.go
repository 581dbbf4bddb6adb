// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	CryptoError    GenericError
	ExistsError    GenericError
	IntegrityError GenericError
	InvalidError   GenericError
	LengthError    GenericError
	NotFoundError  GenericError
	PolicyError    GenericError
	ProcessError   GenericError
	RecordError    GenericError
)

// common errors - keep in alphabetic order
var (
	AccountMarkedForDeletion     = PolicyError("account is marked for deletion")
	AccountNotEmpty              = PolicyError("account balance or boxes are not empty")
	AccountOwnerMismatch         = IntegrityError("account owner does not match")
	AccountRecordNotFound        = NotFoundError("account record not found")
	AlreadyInitialised           = ExistsError("already initialised")
	AnotherInstanceRunning       = ExistsError("another instance is already running")
	AssetMismatch                = PolicyError("instrument definitions do not match")
	BalanceMismatch              = PolicyError("balance statement does not match")
	BoxFull                      = PolicyError("box has reached its maximum size")
	BoxReceiptHashMismatch       = IntegrityError("box receipt does not match its abbreviated entry")
	BoxReceiptNotFound           = NotFoundError("box receipt not found")
	CannotDecodeArmor            = InvalidError("cannot decode armored text")
	CannotDecodeIdentifier       = InvalidError("cannot decode identifier")
	CertificateFileAlreadyExists = ExistsError("certificate file already exists")
	CertificateMismatch          = CryptoError("certificate fingerprint does not match")
	ClauseNotFound               = NotFoundError("clause not found")
	CommandNotAllowed            = PolicyError("command is not allowed")
	ConnectionLimitReached       = PolicyError("connection limit reached")
	ContractAccountNotFound      = NotFoundError("contract account not found")
	ContractIDMismatch           = IntegrityError("contract identifier does not match content")
	ContractKindMismatch         = InvalidError("contract kind does not match")
	ContractNotSigned            = InvalidError("contract is not signed")
	CredentialAlreadySigned      = InvalidError("credential is already signed")
	CredentialChildNotFound      = NotFoundError("child credential not found")
	CredentialInvalidSource      = IntegrityError("credential source does not authorise master")
	CredentialMasterSignature    = IntegrityError("credential master signature is invalid")
	CredentialNotPersistable     = InvalidError("credential is not fully signed")
	CredentialNymMismatch        = IntegrityError("credential nym does not match")
	CredentialSelfSignature      = IntegrityError("credential self signature is invalid")
	CredentialWrongState         = InvalidError("credential is in the wrong state")
	CronItemAlreadyActive        = ExistsError("cron item is already active")
	CronItemLimitExceeded        = PolicyError("too many active cron items for nym")
	CronItemNotFound             = NotFoundError("cron item not found")
	CronNotActivated             = ProcessError("cron is not activated")
	CronNumbersExhausted         = ProcessError("cron has no transaction numbers")
	DatabaseClosed               = ProcessError("database is closed")
	DatabaseVersion              = ProcessError("incompatible database version")
	DecryptionFailed             = CryptoError("decryption failed")
	DuplicateTransaction         = ExistsError("transaction number already present in box")
	EmptyContent                 = InvalidError("content is empty")
	EnvelopeTooShort             = LengthError("envelope is too short")
	ExpiredInstrument            = PolicyError("instrument is outside its validity window")
	FileNotFound                 = NotFoundError("file not found")
	IdentifierMismatch           = IntegrityError("identifier does not match")
	InstrumentDefinitionExists   = ExistsError("instrument definition already exists")
	InstrumentDefinitionMissing  = NotFoundError("instrument definition not found")
	InsufficientFunds            = PolicyError("insufficient funds")
	InvalidAccountType           = InvalidError("invalid account type")
	InvalidAmount                = InvalidError("invalid amount")
	InvalidCommand               = InvalidError("invalid command")
	InvalidContents              = InvalidError("contents cannot be parsed")
	InvalidCount                 = InvalidError("invalid count")
	InvalidCredentialType        = InvalidError("invalid credential type")
	InvalidDirectory             = InvalidError("invalid directory")
	InvalidFileName              = InvalidError("invalid file name")
	InvalidIpAddress             = InvalidError("invalid IP address")
	InvalidItemType              = InvalidError("invalid item type")
	InvalidKeyLength             = LengthError("invalid key length")
	InvalidKeyType               = InvalidError("invalid key type")
	InvalidLedgerType            = InvalidError("invalid ledger type")
	InvalidNonceLength           = LengthError("invalid nonce length")
	InvalidOffer                 = InvalidError("invalid market offer")
	InvalidPaymentPlan           = InvalidError("invalid payment plan")
	InvalidPidFile               = InvalidError("invalid PID file contents")
	InvalidPoolTag               = InvalidError("pool has an invalid prefix tag")
	InvalidRawFile               = InvalidError("invalid raw contract file")
	InvalidReply                 = IntegrityError("reply does not answer the request")
	InvalidRequestNumber         = PolicyError("invalid request number")
	InvalidSignature             = IntegrityError("invalid signature")
	InvalidSmartContract         = InvalidError("invalid smart contract")
	InvalidSource                = InvalidError("invalid nym source")
	InvalidStructPointer         = InvalidError("invalid struct pointer")
	InvalidTransactionType       = InvalidError("invalid transaction type")
	KeyDerivationFailed          = CryptoError("key derivation failed")
	KeyFileAlreadyExists         = ExistsError("private key file already exists")
	LedgerOwnerMismatch          = IntegrityError("ledger owner does not match")
	MarketNotFound               = NotFoundError("market not found")
	MissingParameters            = InvalidError("missing parameters")
	MissingPrivateKey            = NotFoundError("private key is not available")
	NoShareholders               = NotFoundError("no shareholders to pay")
	NotaryContractMissing        = NotFoundError("notary contract is not loaded")
	NotaryMaintenance            = ProcessError("notary is in maintenance mode")
	NotaryMismatch               = IntegrityError("notary identifier does not match")
	NotInitialised               = NotFoundError("not initialised")
	NotPlainName                 = InvalidError("file name must not contain a path")
	NoTransactionNumbers         = NotFoundError("no transaction numbers available")
	NumberNotAvailable           = PolicyError("transaction number is not available")
	NumberNotOutstanding         = PolicyError("transaction number is not outstanding")
	NumberNotTentative           = PolicyError("transaction number is not tentative")
	NymAlreadyRegistered         = ExistsError("nym is already registered")
	NymCannotSign                = InvalidError("nym has no signing key")
	NymNotFound                  = NotFoundError("nym not found")
	NymNotRegistered             = PolicyError("nym is not registered")
	PartyNotFound                = NotFoundError("party not found")
	PasswordDeclined             = CryptoError("password callback declined")
	PasswordMismatch             = InvalidError("passwords do not match")
	PasswordTooShort             = InvalidError("password is too short")
	PersistenceFailed            = ProcessError("persistence failed")
	RateLimiting                 = PolicyError("rate limit exceeded")
	ReceiptNotFound              = NotFoundError("receipt not found in box")
	RequestTimedOut              = ProcessError("request timed out")
	RequestTooLarge              = LengthError("request is too large")
	SameAccount                  = InvalidError("source and destination accounts are the same")
	ScriptFailed                 = ProcessError("script evaluation failed")
	ScriptUnavailable            = ProcessError("no script engine available")
	ServerShutdown               = ProcessError("server is shutting down")
	SignatureNotFound            = NotFoundError("signature not found")
	SignatureRoleMissing         = NotFoundError("no signature with the required role")
	StatementMismatch            = PolicyError("transaction statement does not match")
	TransactionNotFound          = NotFoundError("transaction not found")
	UnsupportedHashType          = InvalidError("unsupported hash type")
	UnsupportedKeyType           = InvalidError("unsupported key type")
	UnsupportedVersion           = InvalidError("unsupported document version")
	URLSourceUnverified          = IntegrityError("URL source cannot be verified")
	VariableIsConstant           = PolicyError("variable is constant")
	VariableNotFound             = NotFoundError("variable not found")
	VariableTypeMismatch         = InvalidError("variable type does not match")
	WrongPassword                = CryptoError("wrong password")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e CryptoError) Error() string    { return string(e) }
func (e ExistsError) Error() string    { return string(e) }
func (e IntegrityError) Error() string { return string(e) }
func (e InvalidError) Error() string   { return string(e) }
func (e LengthError) Error() string    { return string(e) }
func (e NotFoundError) Error() string  { return string(e) }
func (e PolicyError) Error() string    { return string(e) }
func (e ProcessError) Error() string   { return string(e) }
func (e RecordError) Error() string    { return string(e) }

// determine the class of an error
func IsErrCrypto(e error) bool    { _, ok := e.(CryptoError); return ok }
func IsErrExists(e error) bool    { _, ok := e.(ExistsError); return ok }
func IsErrIntegrity(e error) bool { _, ok := e.(IntegrityError); return ok }
func IsErrInvalid(e error) bool   { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool    { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool  { _, ok := e.(NotFoundError); return ok }
func IsErrPolicy(e error) bool    { _, ok := e.(PolicyError); return ok }
func IsErrProcess(e error) bool   { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool    { _, ok := e.(RecordError); return ok }
