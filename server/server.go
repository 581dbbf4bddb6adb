// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package server - the notary
//
// The server owns the transactor, cron and the main file and turns
// signed client messages into signed replies. Locks are held per nym
// for the whole of a message and per account while balances and
// boxes change.
package server

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/patrickmn/go-cache"

	"github.com/wigggles/opentxs-sub024/account"
	"github.com/wigggles/opentxs-sub024/background"
	"github.com/wigggles/opentxs-sub024/contract"
	"github.com/wigggles/opentxs-sub024/credential"
	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/crypto"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/identifier"
	"github.com/wigggles/opentxs-sub024/keypair"
	"github.com/wigggles/opentxs-sub024/market"
	"github.com/wigggles/opentxs-sub024/nym"
	"github.com/wigggles/opentxs-sub024/paymentplan"
	"github.com/wigggles/opentxs-sub024/script"
	"github.com/wigggles/opentxs-sub024/settings"
	"github.com/wigggles/opentxs-sub024/smartcontract"
	"github.com/wigggles/opentxs-sub024/storage"
	"github.com/wigggles/opentxs-sub024/transactor"
)

// file names under the data directory
const (
	pidFileName  = "ot.pid"
	databaseName = "notary.leveldb"
)

// public nyms are cached between messages
const (
	nymCacheExpiry  = 10 * time.Minute
	nymCacheCleanup = 20 * time.Minute
)

// Configuration - start up parameters, the remaining tunables come
// from the settings store
type Configuration struct {
	DataDirectory string
	Name          string
	Host          string
	Port          int
	Terms         string
	KeyType       crypto.KeyType
	KDF           crypto.KDFParameters
	UnlockTimeout time.Duration
}

// Server - the notary
type Server struct {
	sync.RWMutex

	log         *logger.L
	config      Configuration
	settingsMu  sync.RWMutex
	settings    *settings.Server
	engine      *crypto.Engine
	password    keypair.PasswordCallback
	urlVerifier credential.URLVerifier
	scripts     script.Factory

	pid        *pidFile
	folders    *storage.Folders
	db         *storage.Database
	transactor *transactor.Transactor
	cron       *cron.Cron
	book       *market.Book
	vouchers   *account.List
	records    *account.Records

	masterKey  *keypair.CachedKey
	mainFile   *MainFile
	notary     *nym.Nym
	contract   *contract.ServerContract
	notaryID   identifier.Identifier
	background *background.T

	nyms    *cache.Cache
	locks   *locks
	running bool
}

// New - notary not yet started
func New(config Configuration, serverSettings *settings.Server, engine *crypto.Engine, password keypair.PasswordCallback, urlVerifier credential.URLVerifier) *Server {
	if config.UnlockTimeout <= 0 {
		config.UnlockTimeout = 5 * time.Minute
	}
	if 0 == config.KDF.Time {
		config.KDF = crypto.DefaultKDF
	}
	scripts := script.Factory(script.NullFactory)
	if serverSettings.ScriptEnabled {
		scripts = script.LuaFactory(serverSettings.ScriptTimeout)
	}
	return &Server{
		log:         logger.New("server"),
		config:      config,
		settings:    serverSettings,
		engine:      engine,
		password:    password,
		urlVerifier: urlVerifier,
		scripts:     scripts,
		nyms:        cache.New(nymCacheExpiry, nymCacheCleanup),
		locks:       newLocks(),
	}
}

// Init - claim the data directory, load or create the main file and
// activate cron
func (s *Server) Init() error {
	s.Lock()
	defer s.Unlock()

	if s.running {
		return fault.AlreadyInitialised
	}

	folders, err := storage.NewFolders(s.config.DataDirectory)
	if nil != err {
		s.log.Errorf("folders: %q  error: %s", s.config.DataDirectory, err)
		return err
	}

	pid, err := lockPidFile(filepath.Join(folders.DataDirectory(), pidFileName))
	if nil != err {
		s.log.Errorf("PID file error: %s", err)
		return err
	}

	ok := false
	defer func() {
		if !ok {
			if nil != s.db {
				s.db.Close()
				s.db = nil
			}
			_ = pid.release()
		}
	}()

	s.folders = folders
	s.pid = pid

	db, err := storage.Open(filepath.Join(folders.DataDirectory(), databaseName))
	if nil != err {
		return err
	}
	s.db = db
	s.transactor = transactor.New(db)

	if err := s.loadMainFile(); fault.FileNotFound == err {
		s.log.Info("no main file, creating a new notary")
		if err := s.createMainFile(); nil != err {
			s.log.Errorf("create main file error: %s", err)
			return err
		}
	} else if nil != err {
		s.log.Errorf("load main file error: %s", err)
		return err
	}

	s.records = account.NewRecords(folders)
	s.vouchers, err = account.LoadList(s.engine, folders, account.Voucher, s.notaryID, s.notary.ID())
	if nil != err {
		return err
	}

	s.book = market.NewBook(folders)
	if err := s.book.LoadMarkets(); nil != err {
		s.log.Errorf("load markets error: %s", err)
		return err
	}

	s.cron = cron.New(db, folders, s.transactor, cron.Configuration{
		RefillAmount:       s.settings.RefillAmount,
		MaximumItemsPerNym: s.settings.MaximumItemsPerNym,
		Heartbeat:          s.settings.Heartbeat,
	})
	s.cron.RegisterDecoder(market.ItemKind, s.book.Decoder())
	s.cron.RegisterDecoder(paymentplan.ItemKind, paymentplan.Decode)
	s.cron.RegisterDecoder(smartcontract.ItemKind, smartcontract.Decoder(s.scripts))
	if err := s.cron.ActivateCron(); nil != err {
		s.log.Errorf("activate cron error: %s", err)
		return err
	}

	ok = true
	s.running = true
	s.log.Infof("notary: %s  nym: %s  started", s.notaryID, s.notary.ID())
	return nil
}

// Start - run the cron heartbeat
func (s *Server) Start() {
	s.Lock()
	defer s.Unlock()
	if !s.running || nil != s.background {
		return
	}
	s.background = background.Start(background.Processes{s.cron}, s.cronContext())
}

// Shutdown - stop background work and release the data directory
func (s *Server) Shutdown() {
	s.Lock()
	defer s.Unlock()

	if !s.running {
		return
	}
	s.log.Info("shutting down…")
	s.running = false
	if nil != s.background {
		s.background.Stop()
		s.background = nil
	}
	s.db.Close()
	if err := s.pid.release(); nil != err {
		s.log.Errorf("release PID file error: %s", err)
	}
	s.masterKey.Lock()
	s.log.Flush()
}

// UpdateSettings - adopt reloaded settings
//
// permissions and box limits apply to the next message; cron limits
// are fixed at Init
func (s *Server) UpdateSettings(serverSettings *settings.Server) {
	if nil == serverSettings {
		return
	}
	s.settingsMu.Lock()
	s.settings = serverSettings
	s.settingsMu.Unlock()
	s.log.Info("settings updated")
}

func (s *Server) currentSettings() *settings.Server {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings
}

// IsRunning - between Init and Shutdown
func (s *Server) IsRunning() bool {
	s.RLock()
	defer s.RUnlock()
	return s.running
}

// NotaryID - identifier of the notary contract
func (s *Server) NotaryID() identifier.Identifier {
	return s.notaryID
}

// NotaryNymID - identifier of the notary nym
func (s *Server) NotaryNymID() identifier.Identifier {
	return s.notary.ID()
}

// ServerContract - the public notary contract
func (s *Server) ServerContract() *contract.ServerContract {
	return s.contract
}

// Transactor - number issue
func (s *Server) Transactor() *transactor.Transactor {
	return s.transactor
}

// Cron - recurring items
func (s *Server) Cron() *cron.Cron {
	return s.cron
}

// Book - the markets
func (s *Server) Book() *market.Book {
	return s.book
}

// Folders - the data tree
func (s *Server) Folders() *storage.Folders {
	return s.folders
}

// ProcessCron - run one cron tick now
func (s *Server) ProcessCron() error {
	return s.cron.ProcessCron(s.cronContext())
}

// loadMainFile - read the main file, unlock the notary nym and load
// the notary contract
func (s *Server) loadMainFile() error {
	raw, err := s.folders.Load("", mainFileName)
	if nil != err {
		return err
	}
	mainFile, err := parseMainFile(raw)
	if nil != err {
		return err
	}
	masterKey, err := keypair.ParseCachedKey(s.engine, mainFile.CachedKey, s.password, s.config.UnlockTimeout)
	if nil != err {
		return err
	}
	notary, err := nym.LoadPrivate(s.engine, s.folders, mainFile.NymID, masterKey, s.urlVerifier)
	if nil != err {
		return err
	}
	if err := mainFile.Contract.VerifySignature(notary, notary.ID()); nil != err {
		return err
	}
	contractRaw, err := s.folders.Load(storage.Contracts, mainFile.NotaryID.String())
	if nil != err {
		return err
	}
	serverContract, err := contract.ParseServerContract(s.engine, contractRaw, mainFile.NotaryID)
	if nil != err {
		return err
	}
	if serverContract.NymID != notary.ID() {
		return fault.IdentifierMismatch
	}

	s.mainFile = mainFile
	s.masterKey = masterKey
	s.notary = notary
	s.contract = serverContract
	s.notaryID = mainFile.NotaryID
	return nil
}

// createMainFile - interactive bootstrap of a new notary
func (s *Server) createMainFile() error {
	masterKey, err := keypair.CreateCachedKey(s.engine, s.config.KDF, s.password, s.config.UnlockTimeout)
	if nil != err {
		return err
	}
	notary, err := nym.Create(s.engine, masterKey, s.config.KeyType, "notary")
	if nil != err {
		return err
	}
	if err := notary.SavePrivate(s.folders); nil != err {
		return err
	}

	signing, err := notary.SigningCredential()
	if nil != err {
		return err
	}
	key := signing.Key(keypair.Signing)

	serverContract := contract.NewServerContract()
	serverContract.Name = s.config.Name
	serverContract.NymID = notary.ID()
	serverContract.Host = s.config.Host
	serverContract.Port = s.config.Port
	serverContract.KeyType = key.KeyType()
	serverContract.SigningKey = key.PublicKey()
	serverContract.CredentialID = signing.ID()
	serverContract.Terms = s.config.Terms
	if err := serverContract.Create(notary); nil != err {
		return err
	}
	notaryID := serverContract.NotaryID()
	if err := serverContract.Contract.SaveContract(s.folders, storage.Contracts, notaryID.String()); nil != err {
		return err
	}

	mainFile := newMainFile()
	mainFile.NotaryID = notaryID
	mainFile.NymID = notary.ID()
	mainFile.CachedKey = masterKey.Serialize()
	if err := mainFile.Contract.CreateContract(mainFile, notary, "sign main file"); nil != err {
		return err
	}
	if err := s.folders.Save(mainFile.Contract.RawFile(), "", mainFileName); nil != err {
		return err
	}

	// a main file that cannot be read back is unrecoverable
	fault.PanicIfError("server: reload new main file", s.loadMainFile())
	s.log.Infof("created notary: %s", notaryID)
	return nil
}

// loadNym - a registered public nym
func (s *Server) loadNym(nymID identifier.Identifier) (*nym.Nym, error) {
	if n, ok := s.nyms.Get(nymID.String()); ok {
		return n.(*nym.Nym), nil
	}
	if nymID == s.notary.ID() {
		return s.notary, nil
	}
	n, err := nym.LoadPublic(s.engine, s.folders, nymID, s.urlVerifier)
	if fault.FileNotFound == err {
		return nil, fault.NymNotFound
	} else if nil != err {
		s.log.Errorf("load nym: %s  error: %s", nymID, err)
		return nil, err
	}
	s.nyms.Set(nymID.String(), n, cache.DefaultExpiration)
	return n, nil
}
